package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"online-library/internal/core/auth"
	"online-library/internal/domain"
	resp "online-library/internal/transport/http/response"
)

const bearerPrefix = "Bearer "

type TokenParser interface {
	Parse(token string) (string, error)
}

// UserResolver loads the account a verified token was issued for.
type UserResolver interface {
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
}

// Authenticate attaches the caller's principal to the request context.
// Requests without a usable bearer token continue anonymously; a valid
// token for a login that no longer exists is rejected with 401.
func Authenticate(tokens TokenParser, users UserResolver, l *zap.Logger) gin.HandlerFunc {
	var sf singleflight.Group
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, bearerPrefix) {
			c.Next()
			return
		}
		login, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(ah, bearerPrefix)))
		if err != nil {
			l.Warn("bearer token rejected",
				zap.String("rid", c.GetString(KeyRequestID)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		ctx := context.WithoutCancel(c.Request.Context())
		v, err, _ := sf.Do(login, func() (any, error) {
			return users.FindByLogin(ctx, login)
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				err = fmt.Errorf("%w: %s", domain.ErrUnknownUser, login)
			}
			resp.Fail(c, l, err)
			return
		}
		u := v.(*domain.User)
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), u.Principal()))
		c.Next()
	}
}

// Authorize enforces p against the matched route pattern.
func Authorize(p *auth.Policy, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var who *domain.Principal
		if pr, ok := auth.PrincipalFrom(c.Request.Context()); ok {
			who = &pr
		}
		if err := p.Check(c.Request.Method, c.FullPath(), who); err != nil {
			resp.Fail(c, l, err)
			return
		}
		c.Next()
	}
}
