package repo_test

import (
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/metro-commuter/testutil"
)

func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	return testutil.NewTx(t)
}

func ptr[T any](v T) *T { return &v }
