package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/fastygo/taskboard/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code domain.ErrorCode
	}{
		{name: "unique violation", err: &pgconn.PgError{Code: "23505", ConstraintName: "profiles_username_key"}, code: domain.ErrCodeConflict},
		{name: "invalid text", err: &pgconn.PgError{Code: "22P02"}, code: domain.ErrCodeSchema},
		{name: "undefined column", err: &pgconn.PgError{Code: "42703"}, code: domain.ErrCodeSchema},
		{name: "datatype mismatch", err: &pgconn.PgError{Code: "42804"}, code: domain.ErrCodeSchema},
		{name: "undefined table", err: &pgconn.PgError{Code: "42P01"}, code: domain.ErrCodeSchema},
		{name: "not null", err: &pgconn.PgError{Code: "23502"}, code: domain.ErrCodeInvalid},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, code: domain.ErrCodeInvalid},
		{name: "wrapped pg error", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), code: domain.ErrCodeConflict},
		{name: "other pg error", err: &pgconn.PgError{Code: "57014"}, code: domain.ErrCodeTransport},
		{name: "network", err: errors.New("dial tcp: connection refused"), code: domain.ErrCodeTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classify(tc.err, domain.ErrProfileNotFound, "insert profile")
			assert.True(t, domain.IsDomainError(err, tc.code), "got %v", err)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestClassify_NoRows(t *testing.T) {
	assert.Equal(t, domain.ErrTaskNotFound, classify(pgx.ErrNoRows, domain.ErrTaskNotFound, "fetch task"))
	assert.NoError(t, classify(nil, domain.ErrTaskNotFound, "fetch task"))
}

func TestNullInt(t *testing.T) {
	v := int64(3)
	assert.Nil(t, nullInt(nil))
	assert.Equal(t, int64(3), nullInt(&v))
}
