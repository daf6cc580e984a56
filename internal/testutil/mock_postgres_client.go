package testutil

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/paybill/paybill/internal/postgres"
)

// MockPostgresClient satisfies postgres.IClient for service tests that
// run against in-memory stores. WithTx just invokes the callback since
// the in-memory stores have no transactional semantics.
type MockPostgresClient struct{}

func NewMockPostgresClient() postgres.IClient {
	return &MockPostgresClient{}
}

func (m *MockPostgresClient) DB() *sqlx.DB {
	return nil
}

func (m *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	return fn(ctx, nil)
}

func (m *MockPostgresClient) Ping(ctx context.Context) error {
	return nil
}

func (m *MockPostgresClient) Close() error {
	return nil
}
