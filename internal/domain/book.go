package domain

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxBookNameLen = 30
	MaxNameLen     = 191 // author names and logins; matches the indexed column size
	MinLoginLen    = 5
	MinPages       = 1
	MaxPages       = 10000
	MaxBookCost    = 100000

	DefaultPageSize   = 3
	DefaultPageNumber = 1
	MinPageSize       = 3
)

type Book struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string `gorm:"size:30;not null" json:"name"`
	AuthorID        *int64 `gorm:"index" json:"authorId"`
	PublicationYear int    `gorm:"column:pub_year;not null" json:"publicationYear"`
	PageNumber      int    `gorm:"column:page_num;not null" json:"pageNumber"`
	Cost            int    `gorm:"not null" json:"cost"`
}

func (Book) TableName() string { return "books" }

func (b Book) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Name,
			validation.By(notBlank),
			validation.RuneLength(1, MaxBookNameLen),
		),
		validation.Field(&b.PublicationYear, validation.Min(0)),
		validation.Field(&b.PageNumber,
			validation.Required.Error("must be no less than 1"),
			validation.Min(MinPages),
			validation.Max(MaxPages),
		),
		validation.Field(&b.Cost, validation.Min(0), validation.Max(MaxBookCost)),
	)
}

// BookFilter selects books by author and a strict upper cost bound.
// Page numbers are 1-based; 0 addresses the first page as well.
type BookFilter struct {
	AuthorID   *int64 `json:"authorId"`
	MaxCost    *int   `json:"maxCost"`
	PageNumber *int   `json:"pageNumber"`
	PageSize   *int   `json:"pageSize"`
}

func (f BookFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.PageNumber, validation.By(AtLeast(0))),
		validation.Field(&f.PageSize, validation.By(AtLeast(MinPageSize))),
	)
}

// Page returns the row offset and limit the filter addresses.
func (f BookFilter) Page() (offset, limit int) {
	size := DefaultPageSize
	if f.PageSize != nil {
		size = *f.PageSize
	}
	page := DefaultPageNumber
	if f.PageNumber != nil {
		page = *f.PageNumber
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * size, size
}

type BookRepository interface {
	Create(ctx context.Context, b *Book) error
	FindByID(ctx context.Context, id int64) (*Book, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Search(ctx context.Context, f BookFilter) ([]Book, error)
	ListByAuthors(ctx context.Context, authorIDs []int64) ([]Book, error)
	// Replace overwrites every mutable column of the row with b.ID.
	Replace(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id int64) error
}

func notBlank(v any) error {
	s, _ := v.(string)
	if strings.TrimSpace(s) == "" {
		return validation.ErrRequired
	}
	return nil
}

// AtLeast checks an optional *int against a lower bound. Unlike
// validation.Min it also rejects zero values.
func AtLeast(min int) validation.RuleFunc {
	return func(v any) error {
		p, _ := v.(*int)
		if p != nil && *p < min {
			return validation.ErrMinGreaterEqualThanRequired.SetParams(map[string]any{"threshold": min})
		}
		return nil
	}
}
