package repo

import (
	"context"

	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// Transaction runs fn against a repo bound to a single database
// transaction. Every multi-step core operation goes through here so
// order rows, stock counts and cart lines commit or roll back together.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}
