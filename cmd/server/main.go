package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/es"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/repo"
	"storefront/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers)

	r := repo.New(db)
	tokens := &auth.TokenService{Repo: r, JWTSecret: cfg.JWTSecret, RefreshSecret: cfg.RefreshSecret}
	cartSvc := &service.CartService{Repo: r}
	orderSvc := &service.OrderService{Repo: r}
	catalogSvc := &service.CatalogService{Repo: r}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(logging.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Repo: r, Tokens: tokens, Orders: orderSvc, Producer: producer},
		CartHandler:    &httpserver.CartHTTP{Svc: cartSvc, Producer: producer},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orderSvc, Producer: producer},
		AdminHandler:   &httpserver.AdminHTTP{Orders: orderSvc, Repo: r},
		ProductHandler: &httpserver.ProductHTTP{Svc: catalogSvc, Producer: producer},
		Tokens:         tokens,
	}

	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Printf("elasticsearch unavailable, search disabled: %v", err)
		} else {
			deps.SearchHandler = &httpserver.SearchHTTP{ES: esClient, Index: "products"}
		}
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
