package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"online-library/internal/domain"
)

type AuthorChecker interface {
	AuthorExists(ctx context.Context, id int64) (bool, error)
}

type BookService struct {
	books   domain.BookRepository
	authors AuthorChecker
	events  domain.BookEventPublisher
	log     *zap.Logger
}

func NewBookService(books domain.BookRepository, authors AuthorChecker, events domain.BookEventPublisher, log *zap.Logger) *BookService {
	return &BookService{books: books, authors: authors, events: events, log: log}
}

// SearchBooks filters by author and by cost strictly below MaxCost.
func (s *BookService) SearchBooks(ctx context.Context, f domain.BookFilter) ([]domain.Book, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.books.Search(ctx, f)
}

func (s *BookService) CreateBook(ctx context.Context, b domain.Book) (*domain.Book, error) {
	b.ID = 0
	b.Name = strings.TrimSpace(b.Name)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkAuthor(ctx, b.AuthorID); err != nil {
		return nil, err
	}
	if err := s.books.Create(ctx, &b); err != nil {
		return nil, err
	}
	s.log.Info("book created", zap.Int64("book_id", b.ID))
	s.events.Publish(domain.BookEvent{BookID: b.ID, EventType: domain.EventCreated, Book: snapshot(b)})
	return &b, nil
}

func (s *BookService) FindBook(ctx context.Context, id int64) (*domain.Book, error) {
	return s.books.FindByID(ctx, id)
}

// DeleteBook enqueues the REMOVED event before the row is deleted, so a
// consumer may observe the event ahead of the commit.
func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	if err := s.mustExist(ctx, id); err != nil {
		return err
	}
	s.events.Publish(domain.BookEvent{BookID: id, EventType: domain.EventRemoved})
	if err := s.books.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("book deleted", zap.Int64("book_id", id))
	return nil
}

// UpdateBook replaces every mutable column and returns the committed row.
func (s *BookService) UpdateBook(ctx context.Context, id int64, b domain.Book) (*domain.Book, error) {
	b.ID = id
	b.Name = strings.TrimSpace(b.Name)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.mustExist(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkAuthor(ctx, b.AuthorID); err != nil {
		return nil, err
	}
	if err := s.books.Replace(ctx, &b); err != nil {
		return nil, err
	}
	updated, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("book updated", zap.Int64("book_id", id))
	s.events.Publish(domain.BookEvent{BookID: id, EventType: domain.EventUpdated, Book: snapshot(*updated)})
	return updated, nil
}

func (s *BookService) mustExist(ctx context.Context, id int64) error {
	ok, err := s.books.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: book id=%d", domain.ErrNotFound, id)
	}
	return nil
}

func (s *BookService) checkAuthor(ctx context.Context, authorID *int64) error {
	if authorID == nil {
		return nil
	}
	ok, err := s.authors.AuthorExists(ctx, *authorID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: author id=%d", domain.ErrInvalidReference, *authorID)
	}
	return nil
}

func snapshot(b domain.Book) *domain.Book {
	if b.AuthorID != nil {
		id := *b.AuthorID
		b.AuthorID = &id
	}
	return &b
}
