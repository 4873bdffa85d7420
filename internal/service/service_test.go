package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repo.New(db)
}

func createProduct(t *testing.T, r *repo.GormRepo, name string, price float64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       price,
		Stock:       stock,
		Active:      true,
	}
	require.NoError(t, r.CreateProduct(t.Context(), product))
	return product
}

func productStock(t *testing.T, r *repo.GormRepo, id uint) int {
	t.Helper()

	product, err := r.FindProduct(t.Context(), id)
	require.NoError(t, err)
	return product.Stock
}
