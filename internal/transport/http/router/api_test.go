package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"online-library/internal/core/auth"
	"online-library/internal/domain"
	"online-library/internal/repo"
	"online-library/internal/service"
	"online-library/internal/testutil"
	"online-library/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type apiFixture struct {
	t      *testing.T
	engine *gin.Engine
	jwter  *auth.JWTer
	events *testutil.Publisher
	admin  string
	user   string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	db := testutil.NewDB(t)
	log := testutil.Logger(t)
	jwter := &auth.JWTer{Secret: []byte("router-test"), Issuer: "online-library", TTL: time.Hour}
	events := &testutil.Publisher{}

	users := service.NewUserService(repo.NewUserRepo(db), jwter, log)
	authors := service.NewAuthorService(repo.NewAuthorRepo(db), repo.NewBookRepo(db), log)
	books := service.NewBookService(repo.NewBookRepo(db), authors, events, log)
	purchases := service.NewPurchaseService(books, repo.NewPurchaseRepo(db), log)

	_, err := users.Seed(context.Background(), "admin", "admin", domain.RoleAdmin)
	require.NoError(t, err)

	f := &apiFixture{
		t: t,
		engine: NewAPIEngine(Deps{
			Log:       log,
			Tokens:    jwter,
			Users:     users,
			Authors:   authors,
			Books:     books,
			Purchases: purchases,
		}),
		jwter:  jwter,
		events: events,
	}

	f.admin = f.signIn("admin", "admin")
	rec := f.do(http.MethodPost, "/users", "", `{"login":"reader","password":"secret"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	f.user = f.signIn("reader", "secret")
	return f
}

func (f *apiFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	f.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) signIn(login, password string) string {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/users/auth", "", fmt.Sprintf(`{"login":%q,"password":%q}`, login, password))
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(f.t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(f.t, out.Token)
	return out.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) response.ErrorBody {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decode[response.ErrorBody](t, rec)
	assert.Equal(t, message, body.Message)
	assert.NotEmpty(t, body.DetailedMessage)
	assert.False(t, body.Timestamp.IsZero())
	return body
}

type bookJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	AuthorID *int64 `json:"authorId"`
	PubYear  int    `json:"pubYear"`
	PageNum  int    `json:"pageNum"`
	Cost     int    `json:"cost"`
}

type authorJSON struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	BirthYear *int       `json:"birthYear"`
	Books     []bookJSON `json:"books"`
}

func (f *apiFixture) createAuthor(name string) authorJSON {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/authors", f.admin, fmt.Sprintf(`{"name":%q,"birthYear":1920,"books":[]}`, name))
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authorJSON](f.t, rec)
}

func (f *apiFixture) createBook(authorID *int64, cost int) bookJSON {
	f.t.Helper()
	aid := "null"
	if authorID != nil {
		aid = fmt.Sprint(*authorID)
	}
	body := fmt.Sprintf(`{"name":"Dune","authorId":%s,"pubYear":1965,"pageNum":412,"cost":%d}`, aid, cost)
	rec := f.do(http.MethodPost, "/books", f.admin, body)
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[bookJSON](f.t, rec)
}

func TestHealthAndMetricsAreOpen(t *testing.T) {
	f := newAPI(t)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/metrics", "", "").Code)
}

func TestAuthentication(t *testing.T) {
	f := newAPI(t)

	assertError(t, f.do(http.MethodGet, "/books", "", ""), http.StatusUnauthorized, "Failed to authenticate")

	// a token that fails verification degrades to anonymous
	assertError(t, f.do(http.MethodGet, "/books", "garbage", ""), http.StatusUnauthorized, "Failed to authenticate")
	rec := f.do(http.MethodPost, "/users", "garbage", `{"login":"second","password":"secret"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// a valid token whose user does not exist is rejected even on open routes
	ghost, err := f.jwter.Issue("ghost")
	require.NoError(t, err)
	assertError(t, f.do(http.MethodGet, "/books", ghost, ""), http.StatusUnauthorized, "Failed to authenticate")
	assertError(t, f.do(http.MethodGet, "/health", ghost, ""), http.StatusUnauthorized, "Failed to authenticate")

	assertError(t, f.do(http.MethodPost, "/users/auth", "", `{"login":"reader","password":"wrong"}`),
		http.StatusUnauthorized, "Failed to authenticate")
}

func TestSignUpValidation(t *testing.T) {
	f := newAPI(t)

	body := assertError(t, f.do(http.MethodPost, "/users", "", `{"login":"abc","password":"1234"}`),
		http.StatusBadRequest, "Request validation failed")
	assert.Contains(t, body.DetailedMessage, "login")
	assert.Contains(t, body.DetailedMessage, "password")

	body = assertError(t, f.do(http.MethodPost, "/users", "", `{"login":"   ab   ","password":"secret"}`),
		http.StatusBadRequest, "Request validation failed")
	assert.Contains(t, body.DetailedMessage, "login")

	assertError(t, f.do(http.MethodPost, "/users", "", `{"login":"reader","password":"secret"}`),
		http.StatusBadRequest, "Request validation failed")
	assertError(t, f.do(http.MethodPost, "/users", "", `{"login":`),
		http.StatusBadRequest, "Request validation failed")
}

func TestRoleChecks(t *testing.T) {
	f := newAPI(t)

	assertError(t, f.do(http.MethodPost, "/authors", f.user, `{"name":"Herbert"}`), http.StatusForbidden, "Forbidden")
	assertError(t, f.do(http.MethodDelete, "/books/1", f.user, ""), http.StatusForbidden, "Forbidden")

	rec := f.do(http.MethodGet, "/authors", f.user, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthorLifecycle(t *testing.T) {
	f := newAPI(t)

	a := f.createAuthor("Frank Herbert")
	assert.NotZero(t, a.ID)
	assert.Equal(t, "Frank Herbert", a.Name)
	assert.NotNil(t, a.Books)
	assert.Empty(t, a.Books)

	body := assertError(t, f.do(http.MethodPost, "/authors", f.admin, `{"name":"Frank Herbert"}`),
		http.StatusBadRequest, "Request validation failed")
	assert.Contains(t, body.DetailedMessage, "Frank Herbert")

	assertError(t, f.do(http.MethodPost, "/authors", f.admin, `{"id":5,"name":"Someone"}`),
		http.StatusBadRequest, "Request validation failed")

	b := f.createBook(&a.ID, 100)
	require.NotNil(t, b.AuthorID)

	list := decode[[]authorJSON](t, f.do(http.MethodGet, "/authors", f.user, ""))
	require.Len(t, list, 1)
	require.Len(t, list[0].Books, 1)
	assert.Equal(t, b.ID, list[0].Books[0].ID)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, fmt.Sprintf("/authors/%d", a.ID), f.admin, "").Code)
	assertError(t, f.do(http.MethodDelete, fmt.Sprintf("/authors/%d", a.ID), f.admin, ""), http.StatusNotFound, "Entity not found")

	rec := f.do(http.MethodGet, fmt.Sprintf("/books/%d", b.ID), f.user, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authorId":null`)
}

func TestBookLifecycle(t *testing.T) {
	f := newAPI(t)
	a := f.createAuthor("Herbert")

	b := f.createBook(&a.ID, 100)
	assert.Equal(t, "Dune", b.Name)
	assert.Equal(t, 1965, b.PubYear)
	assert.Equal(t, 412, b.PageNum)

	assertError(t, f.do(http.MethodPost, "/books", f.admin, `{"id":1,"name":"X","pubYear":1,"pageNum":1,"cost":1}`),
		http.StatusBadRequest, "Request validation failed")
	assertError(t, f.do(http.MethodPost, "/books", f.admin, `{"name":"X","authorId":999,"pubYear":1,"pageNum":1,"cost":1}`),
		http.StatusBadRequest, "Request validation failed")

	body := assertError(t,
		f.do(http.MethodPut, fmt.Sprintf("/books/%d", b.ID), f.admin, `{"name":"Dune","pubYear":1965,"pageNum":0,"cost":100001}`),
		http.StatusBadRequest, "Request validation failed")
	assert.Contains(t, body.DetailedMessage, "cost")
	assert.Contains(t, body.DetailedMessage, "pageNum")

	rec := f.do(http.MethodPut, fmt.Sprintf("/books/%d", b.ID), f.admin, `{"name":"Dune Messiah","pubYear":1969,"pageNum":256,"cost":90}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[bookJSON](t, rec)
	assert.Equal(t, "Dune Messiah", updated.Name)
	assert.Nil(t, updated.AuthorID)

	assertError(t,
		f.do(http.MethodPut, fmt.Sprintf("/books/%d", b.ID), f.admin, `{"name":"Children of Dune","authorId":999,"pubYear":1976,"pageNum":444,"cost":700}`),
		http.StatusBadRequest, "Request validation failed")
	assert.Equal(t, updated, decode[bookJSON](t, f.do(http.MethodGet, fmt.Sprintf("/books/%d", b.ID), f.user, "")))
	assert.Len(t, f.events.Events(), 2)

	assertError(t, f.do(http.MethodPut, "/books/999", f.admin, `{"name":"Ghost","pubYear":1,"pageNum":1,"cost":1}`),
		http.StatusNotFound, "Entity not found")
	assertError(t, f.do(http.MethodGet, "/books/999", f.user, ""), http.StatusNotFound, "Entity not found")
	assertError(t, f.do(http.MethodGet, "/books/abc", f.user, ""), http.StatusBadRequest, "Request validation failed")

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, fmt.Sprintf("/books/%d", b.ID), f.admin, "").Code)
	assertError(t, f.do(http.MethodGet, fmt.Sprintf("/books/%d", b.ID), f.user, ""), http.StatusNotFound, "Entity not found")
	assertError(t, f.do(http.MethodDelete, fmt.Sprintf("/books/%d", b.ID), f.admin, ""), http.StatusNotFound, "Entity not found")

	var types []domain.EventType
	for _, ev := range f.events.Events() {
		types = append(types, ev.EventType)
	}
	assert.Equal(t, []domain.EventType{domain.EventCreated, domain.EventUpdated, domain.EventRemoved}, types)
}

func TestSearchBooks(t *testing.T) {
	f := newAPI(t)
	a := f.createAuthor("Herbert")
	var mine []bookJSON
	for _, cost := range []int{10, 20, 30, 40} {
		mine = append(mine, f.createBook(&a.ID, cost))
	}
	f.createBook(nil, 5)

	got := decode[[]bookJSON](t, f.do(http.MethodGet, fmt.Sprintf("/books?authorId=%d&maxCost=30&pageSize=5", a.ID), f.user, ""))
	require.Len(t, got, 2)
	assert.Equal(t, mine[0].ID, got[0].ID)
	assert.Equal(t, mine[1].ID, got[1].ID)

	got = decode[[]bookJSON](t, f.do(http.MethodGet, "/books", f.user, ""))
	assert.Len(t, got, 3)

	got = decode[[]bookJSON](t, f.do(http.MethodGet, "/books?pageNumber=2", f.user, ""))
	assert.Len(t, got, 2)

	assertError(t, f.do(http.MethodGet, "/books?pageSize=2", f.user, ""), http.StatusBadRequest, "Request validation failed")
	assertError(t, f.do(http.MethodGet, "/books?maxCost=cheap", f.user, ""), http.StatusBadRequest, "Request validation failed")
}

func TestPurchase(t *testing.T) {
	f := newAPI(t)
	b := f.createBook(nil, 250)
	path := fmt.Sprintf("/books/%d/purchase", b.ID)

	rec := f.do(http.MethodPost, path, f.user, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[struct {
		ID           int64     `json:"id"`
		BookID       int64     `json:"bookId"`
		UserID       int64     `json:"userId"`
		PurchaseDate time.Time `json:"purchaseDate"`
		Cost         int       `json:"cost"`
	}](t, rec)
	assert.NotZero(t, p.ID)
	assert.Equal(t, b.ID, p.BookID)
	assert.Equal(t, 250, p.Cost)
	assert.False(t, p.PurchaseDate.IsZero())

	assertError(t, f.do(http.MethodPost, path, f.user, ""), http.StatusBadRequest, "Request validation failed")
	assertError(t, f.do(http.MethodPost, "/books/999/purchase", f.user, ""), http.StatusNotFound, "Entity not found")
	assertError(t, f.do(http.MethodPost, path, f.admin, ""), http.StatusForbidden, "Forbidden")
	assertError(t, f.do(http.MethodPost, path, "", ""), http.StatusUnauthorized, "Failed to authenticate")
}

func TestUnknownRoute(t *testing.T) {
	f := newAPI(t)
	assertError(t, f.do(http.MethodGet, "/nowhere", f.user, ""), http.StatusNotFound, "Entity not found")
}
