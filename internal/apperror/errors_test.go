package apperror

import (
	"context"
	"errors"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := pkgerrors.Wrap(NotFound("vendor %d not found", 7), "load vendor")

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.Equal(t, "vendor 7 not found", PublicMessage(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad rating"), http.StatusBadRequest},
		{"conflict", Conflict("duplicate"), http.StatusConflict},
		{"store", StoreUnavailable(errors.New("dial tcp"), "query failed"), http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(StoreUnavailable(errors.New("timeout"), "count orders")))
	assert.True(t, IsRetryable(pkgerrors.Wrap(context.DeadlineExceeded, "count orders")))
	assert.False(t, IsRetryable(NotFound("missing")))
	assert.False(t, IsRetryable(nil))
}

func TestPublicMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "Storage temporarily unavailable", PublicMessage(StoreUnavailable(errors.New("password=secret"), "connect")))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("boom")))
}
