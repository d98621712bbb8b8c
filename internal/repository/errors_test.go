package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"trophyangler/internal/domain"
)

func TestTranslateError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, domain.ErrNotFound},
		{"deadline", context.DeadlineExceeded, domain.ErrTimeout},
		{"canceled", fmt.Errorf("query: %w", context.Canceled), domain.ErrTimeout},
		{"duplicated key", gorm.ErrDuplicatedKey, domain.ErrConflict},
		{"pg unique", &pgconn.PgError{Code: "23505", Message: "dup"}, domain.ErrConflict},
		{"pg check", &pgconn.PgError{Code: "23514", ConstraintName: "chk_trophies_length"}, domain.ErrValidation},
		{"pg canceled statement", &pgconn.PgError{Code: "57014"}, domain.ErrTimeout},
		{"pg connection failure", &pgconn.PgError{Code: "08006"}, domain.ErrStoreUnavailable},
		{"pg admin shutdown", &pgconn.PgError{Code: "57P01"}, domain.ErrStoreUnavailable},
		{"bad conn", driver.ErrBadConn, domain.ErrStoreUnavailable},
		{"sqlite unique text", errors.New("constraint failed: UNIQUE constraint failed: users.email"), domain.ErrConflict},
		{"forbidden passes through", domain.ErrForbidden, domain.ErrForbidden},
		{"validation passes through", domain.NewValidationError(map[string]string{"length": "gt"}), domain.ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tc.in), tc.want)
		})
	}
}

func TestTranslateError_Passthrough(t *testing.T) {
	assert.NoError(t, translateError(nil))

	other := errors.New("syntax error at or near")
	assert.Equal(t, other, translateError(other))

	pgOther := &pgconn.PgError{Code: "42601"}
	assert.Equal(t, error(pgOther), translateError(pgOther))
}
