package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"online-library/internal/domain"
	"online-library/internal/transport/http/ez"
)

type UserService interface {
	Register(ctx context.Context, login, password string) (*domain.User, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
}

type UserHandler struct {
	svc UserService
	log *zap.Logger
}

func NewUserHandler(svc UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

// Priority mounts the sign-up routes first.
func (h *UserHandler) Priority() int { return 10 }

func (h *UserHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[SignUpRequest, UserResponse]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *SignUpRequest) (UserResponse, error) {
			u, err := h.svc.Register(c.Request.Context(), in.Login, in.Password)
			if err != nil {
				return UserResponse{}, err
			}
			return UserResponse{ID: u.ID, Login: u.Login}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[SignInRequest, TokenResponse]{
		Method: http.MethodPost,
		Path:   "/users/auth",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *SignInRequest) (TokenResponse, error) {
			tok, err := h.svc.Authenticate(c.Request.Context(), in.Login, in.Password)
			if err != nil {
				return TokenResponse{}, err
			}
			return TokenResponse{Token: tok}, nil
		},
	})
}
