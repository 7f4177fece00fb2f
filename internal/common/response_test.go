package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRespondWithDomainErrorKeepsDomainMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithDomainError(rec, fmt.Errorf("blog does not exist: %w", ErrNotFound))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "blog does not exist")
}

func TestRespondWithDomainErrorMasksInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithDomainError(rec, errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "dial tcp")
	require.Contains(t, rec.Body.String(), ErrInternalServer.Error())
}
