package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
)

type quickAddInput struct {
	BookID    string `json:"bookId" validate:"required"`
	PagesRead int    `json:"pagesRead" validate:"gte=1,lte=100"`
	Notes     string `json:"sessionNotes,omitempty" validate:"max=2000"`
}

func TestValidate_Passes(t *testing.T) {
	v := New()

	err := v.Validate(quickAddInput{BookID: "book-abc", PagesRead: 12})
	assert.NoError(t, err)
}

func TestValidate_CollectsFieldErrors(t *testing.T) {
	v := New()

	err := v.Validate(quickAddInput{PagesRead: 500})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["bookId"])
	assert.Equal(t, "must be less than or equal to 100", details["pagesRead"])
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(quickAddInput{BookID: "book-abc", PagesRead: 0})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "pagesRead")
	assert.NotContains(t, details, "PagesRead")
}
