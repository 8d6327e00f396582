package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"online-library/internal/domain"
	"online-library/internal/transport/http/ez"
)

type AuthorService interface {
	CreateAuthor(ctx context.Context, name string, birthYear *int) (*domain.Author, error)
	ListAuthors(ctx context.Context) ([]domain.Author, error)
	DeleteAuthor(ctx context.Context, id int64) error
}

type AuthorHandler struct {
	svc AuthorService
	log *zap.Logger
}

func NewAuthorHandler(svc AuthorService, log *zap.Logger) *AuthorHandler {
	return &AuthorHandler{svc: svc, log: log}
}

func (h *AuthorHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[AuthorRequest, AuthorResponse]{
		Method: http.MethodPost,
		Path:   "/authors",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *AuthorRequest) (AuthorResponse, error) {
			a, err := h.svc.CreateAuthor(c.Request.Context(), in.Name, in.BirthYear)
			if err != nil {
				return AuthorResponse{}, err
			}
			return toAuthorResponse(*a), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []AuthorResponse]{
		Method: http.MethodGet,
		Path:   "/authors",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]AuthorResponse, error) {
			authors, err := h.svc.ListAuthors(c.Request.Context())
			if err != nil {
				return nil, err
			}
			out := make([]AuthorResponse, 0, len(authors))
			for _, a := range authors {
				out = append(out, toAuthorResponse(a))
			}
			return out, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/authors/:id",
		Binder: ez.BindNone,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			id, err := ez.IDParam(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.svc.DeleteAuthor(c.Request.Context(), id)
		},
	})
}
