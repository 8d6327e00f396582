package domain

import (
	"context"
	"time"
)

// Purchase snapshots the book's cost at purchase time.
type Purchase struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_purchase_user_book,priority:1" json:"userId"`
	BookID      int64     `gorm:"not null;uniqueIndex:idx_purchase_user_book,priority:2" json:"bookId"`
	PurchasedAt time.Time `gorm:"column:purchase_date;not null" json:"purchaseDate"`
	Cost        int       `gorm:"not null" json:"cost"`
}

func (Purchase) TableName() string { return "user_books_purchases" }

type PurchaseRepository interface {
	Exists(ctx context.Context, userID, bookID int64) (bool, error)
	Create(ctx context.Context, p *Purchase) error
}
