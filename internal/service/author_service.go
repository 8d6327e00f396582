package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"online-library/internal/domain"
)

type AuthorService struct {
	authors domain.AuthorRepository
	books   domain.BookRepository
	log     *zap.Logger
}

func NewAuthorService(authors domain.AuthorRepository, books domain.BookRepository, log *zap.Logger) *AuthorService {
	return &AuthorService{authors: authors, books: books, log: log}
}

func (s *AuthorService) CreateAuthor(ctx context.Context, name string, birthYear *int) (*domain.Author, error) {
	a := &domain.Author{Name: strings.TrimSpace(name), BirthYear: birthYear}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	taken, err := s.authors.ExistsByName(ctx, a.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateName, a.Name)
	}
	if err := s.authors.Create(ctx, a); err != nil {
		return nil, err
	}
	a.Books = []domain.Book{}
	s.log.Info("author created", zap.Int64("author_id", a.ID), zap.String("name", a.Name))
	return a, nil
}

// ListAuthors returns every author with its books resolved at read time.
func (s *AuthorService) ListAuthors(ctx context.Context) ([]domain.Author, error) {
	authors, err := s.authors.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	books, err := s.books.ListByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}
	byAuthor := make(map[int64][]domain.Book, len(authors))
	for _, b := range books {
		if b.AuthorID != nil {
			byAuthor[*b.AuthorID] = append(byAuthor[*b.AuthorID], b)
		}
	}
	for i := range authors {
		authors[i].Books = byAuthor[authors[i].ID]
		if authors[i].Books == nil {
			authors[i].Books = []domain.Book{}
		}
	}
	return authors, nil
}

func (s *AuthorService) AuthorExists(ctx context.Context, id int64) (bool, error) {
	return s.authors.ExistsByID(ctx, id)
}

// DeleteAuthor detaches the author's books and removes the author atomically.
func (s *AuthorService) DeleteAuthor(ctx context.Context, id int64) error {
	if err := s.authors.DeleteDetachingBooks(ctx, id); err != nil {
		return err
	}
	s.log.Info("author deleted", zap.Int64("author_id", id))
	return nil
}
