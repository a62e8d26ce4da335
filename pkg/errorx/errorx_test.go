package errorx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[int]int{
		CodeInvalidParam: http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeDBError:      http.StatusInternalServerError,
		CodeStorageError: http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), "code %d", code)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	base := errors.New("connection refused")
	err := Wrap(base, CodeDBError, "query family")

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "query family: connection refused", err.Error())
	assert.Equal(t, CodeDBError, GetCode(err))
}

func TestGetCodeDefaultsToServerBusy(t *testing.T) {
	assert.Equal(t, CodeServerBusy, GetCode(errors.New("plain")))
	assert.True(t, IsNotFound(NotFound("Post not found")))
	assert.False(t, IsNotFound(Forbidden("nope")))
}
