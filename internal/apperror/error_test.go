package apperror_test

import (
	"net/http"
	"testing"

	"github.com/mdouchement/udeshare/internal/apperror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	err := apperror.New(apperror.ValidationError, apperror.MessageEmptyFields)

	assert.Equal(t, "Completa todos los campos", err.Error())
	assert.True(t, apperror.Is(err, apperror.ValidationError))
	assert.False(t, apperror.Is(err, apperror.LoginRejected))
}

func TestIs_Wrapped(t *testing.T) {
	err := errors.Wrap(apperror.New(apperror.AccountUnavailable, apperror.MessageAccountUnavailable), "login")

	assert.True(t, apperror.Is(err, apperror.AccountUnavailable))
	assert.Equal(t, "Cuenta no disponible", apperror.Message(err))
	assert.False(t, apperror.Is(errors.New("boom"), apperror.AccountUnavailable))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, apperror.StatusCode(apperror.NewWithCode(apperror.LoginRejected, 401, "bad credentials")))
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusCode(apperror.New(apperror.NetworkError, "x")))
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusCode(errors.New("boom")))
}
