package domain

import (
	"fmt"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestBookFilterPage(t *testing.T) {
	tests := []struct {
		name         string
		f            BookFilter
		offset, size int
	}{
		{"defaults", BookFilter{}, 0, 3},
		{"page zero", BookFilter{PageNumber: intp(0)}, 0, 3},
		{"page one", BookFilter{PageNumber: intp(1)}, 0, 3},
		{"page three of five", BookFilter{PageNumber: intp(3), PageSize: intp(5)}, 10, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off, lim := tt.f.Page()
			assert.Equal(t, tt.offset, off)
			assert.Equal(t, tt.size, lim)
		})
	}
}

func TestBookFilterValidate(t *testing.T) {
	assert.NoError(t, BookFilter{PageNumber: intp(0), PageSize: intp(3)}.Validate())

	err := BookFilter{PageNumber: intp(-1), PageSize: intp(2)}.Validate()
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "pageNumber")
	assert.Contains(t, verrs, "pageSize")
}

func TestBookValidate(t *testing.T) {
	ok := Book{Name: "Dune", PublicationYear: 1965, PageNumber: 1, Cost: 0}
	assert.NoError(t, ok.Validate())

	edge := ok
	edge.PageNumber, edge.Cost = MaxPages, MaxBookCost
	assert.NoError(t, edge.Validate())

	bad := Book{Name: " ", PublicationYear: -1, PageNumber: MaxPages + 1, Cost: -5}
	var verrs validation.Errors
	require.ErrorAs(t, bad.Validate(), &verrs)
	assert.Len(t, verrs, 4)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("%w: x", ErrNotFound)))
	assert.Equal(t, KindValidation, KindOf(fmt.Errorf("wrapped: %w", ErrAlreadyPurchased)))
	assert.Equal(t, KindValidation, KindOf(validation.Errors{"name": validation.ErrRequired}))
	assert.Equal(t, KindUnauthenticated, KindOf(ErrUnknownUser))
	assert.Equal(t, KindForbidden, KindOf(ErrForbidden))
	assert.Equal(t, KindUnexpected, KindOf(fmt.Errorf("boom")))
	assert.Equal(t, KindUnexpected, KindOf(nil))
	assert.Equal(t, "not_found", KindNotFound.String())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("librarian")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
