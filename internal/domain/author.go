package domain

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Author.Books is derived from the books table on read and never persisted.
type Author struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"uniqueIndex;size:191;not null" json:"name"`
	BirthYear *int   `json:"birthYear"`
	Books     []Book `gorm:"-" json:"books"`
}

func (Author) TableName() string { return "authors" }

type AuthorRepository interface {
	Create(ctx context.Context, a *Author) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]Author, error)
	// DeleteDetachingBooks nulls author_id on every referencing book and
	// removes the author in a single transaction. Returns ErrNotFound when
	// no author row exists.
	DeleteDetachingBooks(ctx context.Context, id int64) error
}

func (a Author) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.By(notBlank), validation.RuneLength(1, MaxNameLen)),
		validation.Field(&a.BirthYear, validation.By(AtLeast(0))),
	)
}
