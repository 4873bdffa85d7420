package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"storefront/internal/models"
)

type Config struct {
	ServerPort int

	DatabaseURL string

	JWTSecret     []byte
	RefreshSecret []byte

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string

	LogLevel string
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		ServerPort:    envIntDefault("SERVER_PORT", 8080),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     []byte(os.Getenv("JWT_SECRET")),
		RefreshSecret: []byte(os.Getenv("REFRESH_SECRET")),
		KafkaBrokers:  csv(os.Getenv("KAFKA_BROKERS")),
		ESURL:         os.Getenv("ES_URL"),
		ESUser:        os.Getenv("ES_USER"),
		ESPassword:    os.Getenv("ES_PASSWORD"),
		LogLevel:      envDefault("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing required env DATABASE_URL")
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("missing required env JWT_SECRET")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, fmt.Errorf("missing required env REFRESH_SECRET")
	}

	return cfg, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Product{},
		&models.User{},
		&models.RefreshToken{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
