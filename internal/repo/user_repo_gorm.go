package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"online-library/internal/core/database"
	"online-library/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: %s", domain.ErrLoginTaken, u.Login)
	}
	return err
}

func (r *UserRepo) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "login = ?", login).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user login=%s", domain.ErrNotFound, login)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&domain.User{}).Where("login = ?", login))
}

// exists runs a bounded count over q.
func exists(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
