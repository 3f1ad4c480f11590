package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/maxviazov/equalplay-service/internal/repository"
	"github.com/maxviazov/equalplay-service/internal/service"
	"github.com/maxviazov/equalplay-service/pkg/response"
)

// fakeInvalid mimics service aggregated validation error to test mapping without reaching into internals.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

func TestMapError(t *testing.T) {
	cases := []struct {
		name     string
		in       error
		wantCode int
		wantErr  string
	}{
		{"invalid_input", &fakeInvalid{fe: []service.FieldError{{Field: "name", Message: "bad"}}}, 400, "invalid_input"},
		{"not_found", repository.ErrNotFound, 404, "not_found"},
		{"player_not_found", service.ErrPlayerNotFound, 404, "not_found"},
		{"wrapped_staged_not_found", fmt.Errorf("unstage: %w", service.ErrStagedNotFound), 404, "not_found"},
		{"already_exists", repository.ErrAlreadyExists, 409, "already_exists"},
		{"conflict", repository.ErrConflict, 409, "conflict"},
		{"field_full", &service.FieldFullError{}, 409, "field_full"},
		{"internal", errors.New("boom"), 500, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, payload := response.MapError(tc.in)
			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.wantErr, payload.Error)
			if tc.wantErr == "invalid_input" {
				assert.NotEmpty(t, payload.FieldErrors, "expected field errors in payload")
			}
		})
	}
}

func TestMapError_FieldFullCarriesOutgoing(t *testing.T) {
	out := model.Player{ID: "p9", Name: "Maya", Seconds: 600, On: true}
	err := fmt.Errorf("toggle: %w", &service.FieldFullError{Incoming: model.Player{ID: "p1", Name: "Ava"}, Outgoing: &out})

	code, payload := response.MapError(err)

	assert.Equal(t, http.StatusConflict, code)
	if assert.NotNil(t, payload.Outgoing) {
		assert.Equal(t, "p9", payload.Outgoing.ID)
	}
	assert.True(t, errors.Is(err, service.ErrFieldFull))
}

func TestMapError_Nil(t *testing.T) {
	code, payload := response.MapError(nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", payload.Error)
}
