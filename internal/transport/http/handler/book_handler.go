package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"online-library/internal/core/auth"
	"online-library/internal/domain"
	"online-library/internal/transport/http/ez"
)

type BookService interface {
	SearchBooks(ctx context.Context, f domain.BookFilter) ([]domain.Book, error)
	CreateBook(ctx context.Context, b domain.Book) (*domain.Book, error)
	FindBook(ctx context.Context, id int64) (*domain.Book, error)
	UpdateBook(ctx context.Context, id int64, b domain.Book) (*domain.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

type PurchaseService interface {
	PurchaseBook(ctx context.Context, who domain.Principal, bookID int64) (*domain.Purchase, error)
}

type BookHandler struct {
	books     BookService
	purchases PurchaseService
	log       *zap.Logger
}

func NewBookHandler(books BookService, purchases PurchaseService, log *zap.Logger) *BookHandler {
	return &BookHandler{books: books, purchases: purchases, log: log}
}

func (h *BookHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[BookQuery, []BookResponse]{
		Method: http.MethodGet,
		Path:   "/books",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *BookQuery) ([]BookResponse, error) {
			books, err := h.books.SearchBooks(c.Request.Context(), in.Filter())
			if err != nil {
				return nil, err
			}
			return toBookResponses(books), nil
		},
	})

	ez.RegisterAction(e, ez.Action[BookRequest, BookResponse]{
		Method: http.MethodPost,
		Path:   "/books",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *BookRequest) (BookResponse, error) {
			b, err := h.books.CreateBook(c.Request.Context(), in.Book())
			if err != nil {
				return BookResponse{}, err
			}
			return toBookResponse(*b), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, BookResponse]{
		Method: http.MethodGet,
		Path:   "/books/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (BookResponse, error) {
			id, err := ez.IDParam(c, "id")
			if err != nil {
				return BookResponse{}, err
			}
			b, err := h.books.FindBook(c.Request.Context(), id)
			if err != nil {
				return BookResponse{}, err
			}
			return toBookResponse(*b), nil
		},
	})

	ez.RegisterAction(e, ez.Action[BookRequest, BookResponse]{
		Method: http.MethodPut,
		Path:   "/books/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *BookRequest) (BookResponse, error) {
			id, err := ez.IDParam(c, "id")
			if err != nil {
				return BookResponse{}, err
			}
			b, err := h.books.UpdateBook(c.Request.Context(), id, in.Book())
			if err != nil {
				return BookResponse{}, err
			}
			return toBookResponse(*b), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/books/:id",
		Binder: ez.BindNone,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			id, err := ez.IDParam(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.books.DeleteBook(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, PurchaseResponse]{
		Method: http.MethodPost,
		Path:   "/books/:id/purchase",
		Binder: ez.BindNone,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *struct{}) (PurchaseResponse, error) {
			id, err := ez.IDParam(c, "id")
			if err != nil {
				return PurchaseResponse{}, err
			}
			who, ok := auth.PrincipalFrom(c.Request.Context())
			if !ok {
				return PurchaseResponse{}, fmt.Errorf("%w: purchase needs a signed-in user", domain.ErrUnauthenticated)
			}
			p, err := h.purchases.PurchaseBook(c.Request.Context(), who, id)
			if err != nil {
				return PurchaseResponse{}, err
			}
			return PurchaseResponse{ID: p.ID, BookID: p.BookID, UserID: p.UserID, PurchaseDate: p.PurchasedAt, Cost: p.Cost}, nil
		},
	})
}
