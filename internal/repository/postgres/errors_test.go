package postgres

import (
	"errors"
	"testing"

	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		code pq.ErrorCode
		want error
	}{
		{"40001", entity.ErrConflict},
		{"40P01", entity.ErrConflict},
		{"23505", entity.ErrConflict},
		{"23503", entity.ErrConflict},
		{"22003", entity.ErrValidation},
		{"23514", entity.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := mapError(&pq.Error{Code: tt.code, Message: "rejected"})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	other := &pq.Error{Code: "42P01"}
	assert.Same(t, other, mapError(other))

	plain := errors.New("boom")
	assert.Equal(t, plain, mapError(plain))
}
