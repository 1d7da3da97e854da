package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, Extraction.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, UnsupportedType.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, Conflict.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFound.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, InvalidQuizFormat.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Upstream.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Internal.HTTPStatus())
}

func TestFromWrapsForeignErrors(t *testing.T) {
	cause := errors.New("boom")
	e := From(fmt.Errorf("context: %w", cause))
	assert.Equal(t, Internal, e.Kind)
	assert.True(t, errors.Is(e, cause))
}

func TestKindSurvivesWrapping(t *testing.T) {
	e := New(NotFound, "quiz not found")
	wrapped := fmt.Errorf("store: %w", e)
	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.Equal(t, NotFound, From(wrapped).Kind)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	e := Wrap(Upstream, "completion API failed", cause)
	assert.True(t, errors.Is(e, cause))
	assert.Contains(t, e.Error(), "completion API failed")
	assert.Contains(t, e.Error(), "underlying")
}
