package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"online-library/internal/domain"
)

type BookFinder interface {
	FindBook(ctx context.Context, id int64) (*domain.Book, error)
}

type PurchaseService struct {
	books     BookFinder
	purchases domain.PurchaseRepository
	log       *zap.Logger
	now       func() time.Time
}

func NewPurchaseService(books BookFinder, purchases domain.PurchaseRepository, log *zap.Logger) *PurchaseService {
	return &PurchaseService{books: books, purchases: purchases, log: log, now: time.Now}
}

// PurchaseBook records that who bought the book at its current cost.
func (s *PurchaseService) PurchaseBook(ctx context.Context, who domain.Principal, bookID int64) (*domain.Purchase, error) {
	book, err := s.books.FindBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	done, err := s.purchases.Exists(ctx, who.ID, bookID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, fmt.Errorf("%w: user=%d book=%d", domain.ErrAlreadyPurchased, who.ID, bookID)
	}
	p := &domain.Purchase{
		UserID:      who.ID,
		BookID:      book.ID,
		PurchasedAt: s.now().UTC(),
		Cost:        book.Cost,
	}
	if err := s.purchases.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("book purchased",
		zap.Int64("user_id", who.ID),
		zap.Int64("book_id", book.ID),
		zap.Int("cost", p.Cost),
	)
	return p, nil
}
