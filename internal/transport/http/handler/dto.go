package handler

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"online-library/internal/domain"
)

var idNotAccepted = validation.Nil.Error("must not be supplied")

// BookRequest is the body of POST /books and PUT /books/:id.
type BookRequest struct {
	ID       *int64 `json:"id"`
	Name     string `json:"name"`
	AuthorID *int64 `json:"authorId"`
	PubYear  *int   `json:"pubYear"`
	PageNum  *int   `json:"pageNum"`
	Cost     *int   `json:"cost"`
}

func (r BookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, idNotAccepted),
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, domain.MaxBookNameLen)),
		validation.Field(&r.AuthorID, validation.By(positiveID)),
		validation.Field(&r.PubYear, validation.NotNil, validation.By(domain.AtLeast(0))),
		validation.Field(&r.PageNum, validation.NotNil, validation.By(domain.AtLeast(domain.MinPages)), validation.Max(domain.MaxPages)),
		validation.Field(&r.Cost, validation.NotNil, validation.By(domain.AtLeast(0)), validation.Max(domain.MaxBookCost)),
	)
}

// Book must only be called after Validate succeeded.
func (r BookRequest) Book() domain.Book {
	return domain.Book{
		Name:            r.Name,
		AuthorID:        r.AuthorID,
		PublicationYear: *r.PubYear,
		PageNumber:      *r.PageNum,
		Cost:            *r.Cost,
	}
}

type BookResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	AuthorID *int64 `json:"authorId"`
	PubYear  int    `json:"pubYear"`
	PageNum  int    `json:"pageNum"`
	Cost     int    `json:"cost"`
}

func toBookResponse(b domain.Book) BookResponse {
	return BookResponse{
		ID:       b.ID,
		Name:     b.Name,
		AuthorID: b.AuthorID,
		PubYear:  b.PublicationYear,
		PageNum:  b.PageNumber,
		Cost:     b.Cost,
	}
}

func toBookResponses(books []domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResponse(b))
	}
	return out
}

// BookQuery holds the GET /books filters; bounds are checked by the service.
type BookQuery struct {
	AuthorID   *int64 `form:"authorId"`
	MaxCost    *int   `form:"maxCost"`
	PageNumber *int   `form:"pageNumber"`
	PageSize   *int   `form:"pageSize"`
}

func (q BookQuery) Filter() domain.BookFilter {
	return domain.BookFilter{AuthorID: q.AuthorID, MaxCost: q.MaxCost, PageNumber: q.PageNumber, PageSize: q.PageSize}
}

// AuthorRequest accepts a books array for compatibility; its content is ignored.
type AuthorRequest struct {
	ID        *int64        `json:"id"`
	Name      string        `json:"name"`
	BirthYear *int          `json:"birthYear"`
	Books     []BookRequest `json:"books"`
}

func (r AuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, idNotAccepted),
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, domain.MaxNameLen)),
		validation.Field(&r.BirthYear, validation.By(domain.AtLeast(0))),
	)
}

type AuthorResponse struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	BirthYear *int           `json:"birthYear"`
	Books     []BookResponse `json:"books"`
}

func toAuthorResponse(a domain.Author) AuthorResponse {
	return AuthorResponse{ID: a.ID, Name: a.Name, BirthYear: a.BirthYear, Books: toBookResponses(a.Books)}
}

type PurchaseResponse struct {
	ID           int64     `json:"id"`
	BookID       int64     `json:"bookId"`
	UserID       int64     `json:"userId"`
	PurchaseDate time.Time `json:"purchaseDate"`
	Cost         int       `json:"cost"`
}

type SignUpRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Validate measures the login as it will be stored, after trimming.
func (r SignUpRequest) Validate() error {
	r.Login = strings.TrimSpace(r.Login)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required, validation.RuneLength(domain.MinLoginLen, domain.MaxNameLen)),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(5, 72)),
	)
}

type SignInRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func positiveID(v any) error {
	p, _ := v.(*int64)
	if p != nil && *p <= 0 {
		return validation.NewError("validation_positive_id", "must be a positive id")
	}
	return nil
}
