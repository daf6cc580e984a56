package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/paybill/paybill/internal/cache"
	"github.com/paybill/paybill/internal/config"
	"github.com/paybill/paybill/internal/domain/agreement"
	domainClient "github.com/paybill/paybill/internal/domain/client"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/postgres"
	"github.com/paybill/paybill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// unreachableDriver fails every connection attempt, so any repository
// call that falls through the cache to SQL returns an error instead of
// data.
type unreachableDriver struct{}

func (unreachableDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("database unreachable")
}

type unreachableConnector struct{}

func (unreachableConnector) Connect(context.Context) (driver.Conn, error) {
	return nil, errors.New("database unreachable")
}

func (unreachableConnector) Driver() driver.Driver {
	return unreachableDriver{}
}

type unreachableDBClient struct {
	db *sqlx.DB
}

func newUnreachableDBClient() postgres.IClient {
	return &unreachableDBClient{
		db: sqlx.NewDb(sql.OpenDB(unreachableConnector{}), "postgres"),
	}
}

func (c *unreachableDBClient) DB() *sqlx.DB {
	return c.db
}

func (c *unreachableDBClient) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	return fn(ctx, nil)
}

func (c *unreachableDBClient) Ping(ctx context.Context) error {
	return errors.New("database unreachable")
}

func (c *unreachableDBClient) Close() error {
	return nil
}

func tenantContext(tenantID string) context.Context {
	ctx := context.WithValue(context.Background(), types.CtxTenantID, tenantID)
	return context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)
	return log
}

func TestAgreementCacheKeyIsTenantScoped(t *testing.T) {
	ctxA := tenantContext("tenant-a")
	ctxB := tenantContext("tenant-b")

	keyA := agreementCacheKey(ctxA, "client-1", "svc-1")
	keyB := agreementCacheKey(ctxB, "client-1", "svc-1")
	require.NotEqual(t, keyA, keyB)
	require.Contains(t, keyA, "tenant-a")
	require.Equal(t, keyA, agreementCacheKey(ctxA, "client-1", "svc-1"))
}

func TestClientCacheKeyIsTenantScoped(t *testing.T) {
	ctxA := tenantContext("tenant-a")
	ctxB := tenantContext("tenant-b")

	keyA := clientCacheKey(ctxA, "client-1")
	keyB := clientCacheKey(ctxB, "client-1")
	require.NotEqual(t, keyA, keyB)
	require.Contains(t, keyA, "tenant-a")
}

func TestCachedAgreementNotServedAcrossTenants(t *testing.T) {
	ctxA := tenantContext("tenant-a")
	ctxB := tenantContext("tenant-b")

	c := cache.NewInMemoryCache()
	c.Flush(context.Background())
	repo := NewAgreementRepository(newUnreachableDBClient(), newTestLogger(t), c)

	agr := &agreement.ServiceAgreement{
		ID:          "agr-1",
		ClientID:    "client-1",
		ServiceID:   "svc-1",
		ServiceName: "Payroll Processing",
		UnitType:    types.UnitTypeTime,
		Rate:        decimal.NewFromInt(150),
		BaseModel:   types.GetDefaultBaseModel(ctxA),
	}
	c.Set(ctxA, agreementCacheKey(ctxA, agr.ClientID, agr.ServiceID), agr, 5*time.Minute)

	// the seeding tenant gets the cached agreement without touching SQL
	got, err := repo.GetByClientAndService(ctxA, "client-1", "svc-1")
	require.NoError(t, err)
	require.Equal(t, "agr-1", got.ID)

	// another tenant misses the cache and falls through to its own query
	_, err = repo.GetByClientAndService(ctxB, "client-1", "svc-1")
	require.Error(t, err)
}

func TestCachedClientNotServedAcrossTenants(t *testing.T) {
	ctxA := tenantContext("tenant-a")
	ctxB := tenantContext("tenant-b")

	c := cache.NewInMemoryCache()
	c.Flush(context.Background())
	repo := NewClientRepository(newUnreachableDBClient(), newTestLogger(t), c)

	cl := &domainClient.Client{
		ID:           "client-1",
		Name:         "Acme Payroll Pty Ltd",
		Currency:     "AUD",
		PayFrequency: types.PayFrequencyMonthly,
		BaseModel:    types.GetDefaultBaseModel(ctxA),
	}
	c.Set(ctxA, clientCacheKey(ctxA, cl.ID), cl, 5*time.Minute)

	got, err := repo.Get(ctxA, "client-1")
	require.NoError(t, err)
	require.Equal(t, "Acme Payroll Pty Ltd", got.Name)

	_, err = repo.Get(ctxB, "client-1")
	require.Error(t, err)
}
