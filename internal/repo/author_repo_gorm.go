package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"online-library/internal/core/database"
	"online-library/internal/domain"
)

type AuthorRepo struct{ db *gorm.DB }

func NewAuthorRepo(db *gorm.DB) *AuthorRepo { return &AuthorRepo{db: db} }

func (r *AuthorRepo) Create(ctx context.Context, a *domain.Author) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateName, a.Name)
	}
	return err
}

func (r *AuthorRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&domain.Author{}).Where("name = ?", name))
}

func (r *AuthorRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&domain.Author{}).Where("id = ?", id))
}

func (r *AuthorRepo) List(ctx context.Context) ([]domain.Author, error) {
	var out []domain.Author
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AuthorRepo) DeleteDetachingBooks(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Book{}).
			Where("author_id = ?", id).
			Update("author_id", nil).Error
		if err != nil {
			return fmt.Errorf("detach books of author %d: %w", id, err)
		}
		res := tx.Delete(&domain.Author{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete author %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: author id=%d", domain.ErrNotFound, id)
		}
		return nil
	})
}
