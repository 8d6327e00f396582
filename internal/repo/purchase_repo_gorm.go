package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"online-library/internal/core/database"
	"online-library/internal/domain"
)

type PurchaseRepo struct{ db *gorm.DB }

func NewPurchaseRepo(db *gorm.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

func (r *PurchaseRepo) Exists(ctx context.Context, userID, bookID int64) (bool, error) {
	return exists(r.db.WithContext(ctx).
		Model(&domain.Purchase{}).
		Where("user_id = ? AND book_id = ?", userID, bookID))
}

// Create relies on the (user_id, book_id) unique index to reject a second
// purchase that raced past Exists.
func (r *PurchaseRepo) Create(ctx context.Context, p *domain.Purchase) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: user=%d book=%d", domain.ErrAlreadyPurchased, p.UserID, p.BookID)
	}
	return err
}
