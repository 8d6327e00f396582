package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"online-library/internal/domain"
)

type BookRepo struct{ db *gorm.DB }

func NewBookRepo(db *gorm.DB) *BookRepo { return &BookRepo{db: db} }

func (r *BookRepo) Create(ctx context.Context, b *domain.Book) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookRepo) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	var b domain.Book
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: book id=%d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&domain.Book{}).Where("id = ?", id))
}

// Search matches author equality and cost strictly below MaxCost, ordered by id.
func (r *BookRepo) Search(ctx context.Context, f domain.BookFilter) ([]domain.Book, error) {
	q := r.db.WithContext(ctx).Model(&domain.Book{})
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.MaxCost != nil {
		q = q.Where("cost < ?", *f.MaxCost)
	}
	offset, limit := f.Page()

	out := make([]domain.Book, 0, limit)
	if err := q.Order("id").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookRepo) ListByAuthors(ctx context.Context, authorIDs []int64) ([]domain.Book, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var out []domain.Book
	err := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("id").
		Find(&out).Error
	return out, err
}

func (r *BookRepo) Replace(ctx context.Context, b *domain.Book) error {
	var authorID any
	if b.AuthorID != nil {
		authorID = *b.AuthorID
	}
	return r.db.WithContext(ctx).
		Model(&domain.Book{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"name":      b.Name,
			"author_id": authorID,
			"pub_year":  b.PublicationYear,
			"page_num":  b.PageNumber,
			"cost":      b.Cost,
		}).Error
}

func (r *BookRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Book{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: book id=%d", domain.ErrNotFound, id)
	}
	return nil
}
