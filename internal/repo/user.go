package repo

import (
	"context"

	"storefront/internal/models"
)

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *GormRepo) DeleteUser(ctx context.Context, email string) error {
	return r.DB.WithContext(ctx).Where("email = ?", email).Delete(&models.User{}).Error
}

func (r *GormRepo) CountUsers(ctx context.Context, activeOnly bool) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormRepo) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(token).Error
}

func (r *GormRepo) FindRefreshToken(ctx context.Context, raw string) (*models.RefreshToken, error) {
	var stored models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", raw).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *GormRepo) RevokeRefreshTokens(ctx context.Context, email string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_email = ?", email).
		Update("revoked", true).Error
}
