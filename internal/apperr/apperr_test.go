package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("saving: %w", New(Duplicate, "already paid"))

	assert.Equal(t, Duplicate, KindOf(wrapped))
	assert.True(t, Is(wrapped, Duplicate))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, Internal))
}

func TestValidationErrJoinsDetails(t *testing.T) {
	err := ValidationErr([]string{"Invalid card number", "Invalid security code"})

	assert.Equal(t, "Invalid card number; Invalid security code", err.Message)
	assert.Len(t, err.Details, 2)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		kind Kind
		http int
		grpc codes.Code
	}{
		{Validation, http.StatusBadRequest, codes.InvalidArgument},
		{DomainRange, http.StatusBadRequest, codes.InvalidArgument},
		{NotFound, http.StatusNotFound, codes.NotFound},
		{Duplicate, http.StatusConflict, codes.AlreadyExists},
		{IllegalTransition, http.StatusConflict, codes.FailedPrecondition},
		{Settlement, http.StatusPaymentRequired, codes.Aborted},
		{Internal, http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := New(tt.kind, "x")
			assert.Equal(t, tt.http, HTTPStatus(err))
			assert.Equal(t, tt.grpc, GRPCCode(err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "not here", PublicMessage(New(NotFound, "not here")))
	assert.Equal(t, "An unexpected error occurred", PublicMessage(Wrap(Internal, "db down", errors.New("dial tcp"))))
	assert.Equal(t, "An unexpected error occurred", PublicMessage(errors.New("raw")))
}
