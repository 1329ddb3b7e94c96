package iowrite

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestRetryableConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "serialization failure",
			err:  &pgconn.PgError{Code: "40001"},
			want: true,
		},
		{
			name: "deadlock detected",
			err:  &pgconn.PgError{Code: "40P01"},
			want: true,
		},
		{
			name: "wrapped serialization failure",
			err: fmt.Errorf("apply: %w",
				&pgconn.PgError{Code: "40001"}),
			want: true,
		},
		{
			name: "unique violation is not retried",
			err:  &pgconn.PgError{Code: "23505"},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("broken pipe"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryableConflict(tt.err))
		})
	}
}

func TestCollect(t *testing.T) {
	qids := []string{"Q1", "Q2", "Q1", "", "Q3", "Q2"}
	got := collect(len(qids), func(i int) string { return qids[i] })
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, got)

	assert.Nil(t, collect(0, func(i int) string { return "" }))
}
