package wikigate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegrationHealth tests the health service extension against a real database
func TestIntegrationHealth(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := SetupTestDatabase(ctx)
	require.NoError(t, err)

	hs := NewHealthService(service)

	assert.True(t, hs.IsHealthy(ctx))
	assert.NoError(t, hs.Ping(ctx))

	status := hs.Health(ctx)
	assert.True(t, status.Healthy)

	stats := hs.GetPoolStats()
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)

	combined := hs.GateHealth(ctx)
	assert.True(t, combined.Database.Healthy)
	assert.True(t, combined.GateHealthy)
	assert.True(t, hs.Healthy(ctx))
}

// TestIntegrationPoolConfiguration tests connection pool management
func TestIntegrationPoolConfiguration(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := SetupTestDatabase(ctx)
	require.NoError(t, err)

	ps := NewPoolService(service)

	config := DefaultPoolConfig()
	assert.Greater(t, config.MaxOpenConnections, 0)
	assert.Greater(t, config.MaxIdleConnections, 0)

	require.NoError(t, ps.ConfigureConnectionPool(PoolConfig{
		MaxOpenConnections:    15,
		MaxIdleConnections:    5,
		ConnectionMaxLifetime: 10 * time.Minute,
		ConnectionMaxIdleTime: time.Minute,
	}))

	got, err := ps.GetConnectionPoolConfig()
	require.NoError(t, err)
	assert.Equal(t, 15, got.MaxOpenConnections)

	require.NoError(t, ps.ResetConnectionPool())
}

// TestIntegrationTransactionRollback tests that a failed transaction leaves no partial state
func TestIntegrationTransactionRollback(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := SetupTestDatabase(ctx)
	require.NoError(t, err)

	owner := uniqueTestID("owner")
	user1 := uniqueTestID("user1")
	user2 := uniqueTestID("user2")
	ownerCtx := WithActorID(ctx, owner)

	wiki, err := service.CreateWiki(ownerCtx, "txn", StatusPrivate)
	require.NoError(t, err)
	doc, err := service.CreateDocument(ownerCtx, wiki.ID, "", "page", nil)
	require.NoError(t, err)

	// Two grants in one transaction: the second fails, the first rolls back
	err = service.Transaction(ownerCtx, func(ctx context.Context) error {
		if _, err := service.GrantCapability(ctx, doc.ID, user1, CapabilityReadable); err != nil {
			return err
		}
		_, err := service.GrantCapability(ctx, "no-such-document", user2, CapabilityReadable)
		return err
	})
	require.Error(t, err)

	assert.False(t, service.HasGrant(ctx, doc.ID, user1), "failed transaction must roll back the first grant")

	// A clean transaction commits both
	err = service.Transaction(ownerCtx, func(ctx context.Context) error {
		if _, err := service.GrantCapability(ctx, doc.ID, user1, CapabilityReadable); err != nil {
			return err
		}
		_, err := service.GrantCapability(ctx, doc.ID, user2, CapabilityEditable)
		return err
	})
	require.NoError(t, err)
	assert.True(t, service.HasGrant(ctx, doc.ID, user1))
	assert.True(t, service.HasGrant(ctx, doc.ID, user2))
}

// TestIntegrationTransactionIsolation tests that an open transaction never
// leaks into reads running on other contexts
func TestIntegrationTransactionIsolation(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := SetupTestDatabase(ctx)
	require.NoError(t, err)

	owner := uniqueTestID("owner")
	reader := uniqueTestID("reader")
	ownerCtx := WithActorID(ctx, owner)

	wiki, err := service.CreateWiki(ownerCtx, "iso", StatusPrivate)
	require.NoError(t, err)
	doc, err := service.CreateDocument(ownerCtx, wiki.ID, "", "page", nil)
	require.NoError(t, err)

	pool := service.db
	err = service.Transaction(ownerCtx, func(txCtx context.Context) error {
		// The shared service keeps the pooled handle; only the callback
		// context carries the transaction.
		assert.Equal(t, pool, service.db)
		_, inTx := txFromContext(txCtx)
		assert.True(t, inTx)

		if _, err := service.GrantCapability(txCtx, doc.ID, reader, CapabilityReadable); err != nil {
			return err
		}

		// Visible through the transaction context
		grant, err := service.GetGrant(txCtx, doc.ID, reader)
		if err != nil {
			return err
		}
		assert.NotNil(t, grant)

		// Invisible to a read on the plain context while uncommitted
		grant, err = service.GetGrant(ctx, doc.ID, reader)
		if err != nil {
			return err
		}
		assert.Nil(t, grant, "uncommitted grant must not leak outside the transaction")
		return nil
	})
	require.NoError(t, err)

	grant, err := service.GetGrant(ctx, doc.ID, reader)
	require.NoError(t, err)
	assert.NotNil(t, grant, "committed grant visible after the transaction")
}

// TestIntegrationReadOnlyTransaction tests consistent snapshot reads
func TestIntegrationReadOnlyTransaction(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := SetupTestDatabase(ctx)
	require.NoError(t, err)

	owner := uniqueTestID("owner")
	ownerCtx := WithActorID(ctx, owner)

	wiki, err := service.CreateWiki(ownerCtx, "ro", StatusPrivate)
	require.NoError(t, err)
	doc, err := service.CreateDocument(ownerCtx, wiki.ID, "", "page", nil)
	require.NoError(t, err)

	err = service.ReadOnlyTransaction(ctx, func(ctx context.Context) error {
		if _, err := service.GetWiki(ctx, wiki.ID); err != nil {
			return err
		}
		_, err := service.GetDocument(ctx, doc.ID)
		return err
	})
	assert.NoError(t, err)
}

// TestIntegrationGateMetrics tests decision metrics over database-backed resolution
func TestIntegrationGateMetrics(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := SetupTestDatabase(ctx)
	require.NoError(t, err)

	owner := uniqueTestID("owner")
	ownerCtx := WithActorID(ctx, owner)

	wiki, err := service.CreateWiki(ownerCtx, "metered", StatusPrivate)
	require.NoError(t, err)
	doc, err := service.CreateDocument(ownerCtx, wiki.ID, "", "page", nil)
	require.NoError(t, err)

	service.ResetGateMetrics()

	require.NoError(t, service.Authorize(ctx, owner, doc.ID, CapabilityReadable))
	err = service.Authorize(ctx, uniqueTestID("stranger"), doc.ID, CapabilityReadable)
	assert.True(t, IsForbidden(err))

	m := service.GetGateMetrics()
	assert.Equal(t, int64(2), m.TotalDecisions)
	assert.Equal(t, int64(1), m.Allowed)
	assert.Equal(t, int64(1), m.Denied)
	assert.True(t, service.IsGateHealthy())
}
