package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := fmt.Errorf("chat: %w", New(NotFound, "prompt %q not found", "x"))

	assert.True(t, errors.Is(err, NotFound))
	assert.False(t, errors.Is(err, AuthFailure))
	assert.Equal(t, NotFound, KindOf(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.Equal(t, `prompt "x" not found`, Message(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{BadRequest, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{AuthFailure, http.StatusInternalServerError},
		{CredentialsNotConfigured, http.StatusInternalServerError},
		{ModelRefusal, http.StatusInternalServerError},
		{UpstreamFailure, http.StatusInternalServerError},
		{IOFailure, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(New(tt.kind, "boom")))
		})
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestIsParseFailure(t *testing.T) {
	for _, k := range []Kind{ModelRefusal, NoStructuredData, MalformedPayload, IncompleteRecord} {
		assert.True(t, IsParseFailure(New(k, "x")), k)
	}
	assert.False(t, IsParseFailure(New(UpstreamFailure, "x")))
	assert.False(t, IsParseFailure(errors.New("x")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(UpstreamFailure, cause, "prompt store request failed")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "prompt store request failed: connection reset", err.Error())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc", Preview("abc", 5))
	assert.Equal(t, "ab", Preview("abc", 2))
	assert.Equal(t, "日本", Preview("日本語", 2))
}
