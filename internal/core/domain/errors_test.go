package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrCorpusFormat", ErrCorpusFormat},
		{"ErrIndexUnavailable", ErrIndexUnavailable},
		{"ErrGeneration", ErrGeneration},
		{"ErrEmptyResponse", ErrEmptyResponse},
		{"ErrUnknownBackend", ErrUnknownBackend},
		{"ErrPersonaUnavailable", ErrPersonaUnavailable},
		{"ErrInvalidInput", ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Wrapping tests that wrapped errors match via errors.Is
func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: row 12 missing response", ErrCorpusFormat)
	assert.True(t, errors.Is(wrapped, ErrCorpusFormat))
	assert.False(t, errors.Is(wrapped, ErrGeneration))
}

// TestErrors_Distinct tests that sentinel errors do not alias each other
func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrGeneration, ErrEmptyResponse))
	assert.False(t, errors.Is(ErrIndexUnavailable, ErrCorpusFormat))
}
