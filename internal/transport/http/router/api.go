package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"online-library/internal/core/auth"
	"online-library/internal/core/server"
	"online-library/internal/domain"
	"online-library/internal/transport/http/handler"
	mdw "online-library/internal/transport/http/middleware"
	resp "online-library/internal/transport/http/response"
)

type Limits struct {
	RPS           float64
	Burst         int
	MaxConcurrent int64
	MaxBodyBytes  int64
	Timeout       time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.RPS <= 0 {
		l.RPS = 200
	}
	if l.Burst <= 0 {
		l.Burst = 400
	}
	if l.MaxConcurrent <= 0 {
		l.MaxConcurrent = 300
	}
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = 1 << 20
	}
	if l.Timeout <= 0 {
		l.Timeout = 10 * time.Second
	}
	return l
}

// UserService covers sign-up and sign-in as well as the lookup the
// authentication middleware needs.
type UserService interface {
	mdw.UserResolver
	handler.UserService
}

type Deps struct {
	Log       *zap.Logger
	Tokens    mdw.TokenParser
	Users     UserService
	Authors   handler.AuthorService
	Books     handler.BookService
	Purchases handler.PurchaseService
	Policy    *auth.Policy // LibraryPolicy when nil
	Limits    Limits
}

func NewAPIEngine(d Deps) *gin.Engine {
	lim := d.Limits.withDefaults()
	policy := d.Policy
	if policy == nil {
		policy = auth.LibraryPolicy()
	}

	r := server.NewRouter(d.Log, mdw.PanicResponder())
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.MaxConcurrent),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.Timeout),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		mdw.Authenticate(d.Tokens, d.Users, d.Log),
		mdw.Authorize(policy, d.Log),
	)
	r.NoRoute(func(c *gin.Context) {
		resp.Fail(c, d.Log, domain.ErrNotFound)
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var reg Registry
	reg.Register(
		handler.NewUserHandler(d.Users, d.Log),
		handler.NewAuthorHandler(d.Authors, d.Log),
		handler.NewBookHandler(d.Books, d.Purchases, d.Log),
	)
	reg.MountAll(&r.RouterGroup)
	return r
}
