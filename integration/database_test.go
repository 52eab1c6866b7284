//go:build database

package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/storesync/core"
	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/internal/recordstore"
	"github.com/huangsam/storesync/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startMySQL starts a MySQL container and returns its connection string.
func startMySQL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "storesync",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mysqlC.Terminate(ctx) })

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	return fmt.Sprintf("root:secret123@tcp(%s:%s)/storesync?parseTime=true", host, port.Port())
}

// startPostgres starts a PostgreSQL container and returns its connection string.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		// The server logs readiness twice: once for the init run and once for real.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
}

// TestStoresyncWithMySQL tests the storesync CLI and core against a MySQL backend.
func TestStoresyncWithMySQL(t *testing.T) {
	connStr := startMySQL(t)
	exerciseBackend(t, schema.MySQLBackend, connStr)
	exerciseCLI(t, []string{
		"STORESYNC_BACKEND=mysql",
		"STORESYNC_DB_CONNECT=" + connStr,
	})
}

// TestStoresyncWithPostgres tests the storesync CLI and core against a PostgreSQL backend.
func TestStoresyncWithPostgres(t *testing.T) {
	connStr := startPostgres(t)
	exerciseBackend(t, schema.PostgreSQLBackend, connStr)
	exerciseCLI(t, []string{
		"STORESYNC_BACKEND=postgresql",
		"STORESYNC_DB_CONNECT=" + connStr,
	})
}

// exerciseBackend checks the behavior that depends on the backend's own
// constraint errors, then clears the store for the CLI run.
func exerciseBackend(t *testing.T, backend schema.DatabaseBackend, connStr string) {
	t.Helper()
	ctx := context.Background()

	store, err := recordstore.Open(backend, connStr)
	require.NoError(t, err)

	t.Run("duplicate insert is a conflict", func(t *testing.T) {
		rec := schema.Product{ID: "dup", Name: "Dup", Condition: schema.NewCondition, Price: 100}.ToRecord()
		_, err := store.Insert(ctx, schema.ProductsTable, rec)
		require.NoError(t, err)
		_, err = store.Insert(ctx, schema.ProductsTable, rec)
		require.Error(t, err)
		assert.True(t, contract.IsConflict(err), "got %v", err)
	})

	t.Run("concurrent sign-ins create one profile", func(t *testing.T) {
		meta := schema.UserMetadata{Email: "race@example.com"}
		results := make([]core.EnsureResult, 8)
		var wg sync.WaitGroup
		for i := range results {
			wg.Go(func() {
				r := core.NewProfileReconciler(store, nil)
				results[i] = r.EnsureProfile(ctx, "racer", meta)
			})
		}
		wg.Wait()

		created := 0
		for _, res := range results {
			require.NotEqual(t, schema.ProfileError, res.Outcome, res.Message())
			assert.Equal(t, "racer", res.Profile.ID)
			if res.Outcome == schema.ProfileCreated {
				created++
			}
		}
		assert.Equal(t, 1, created)

		rows, err := store.List(ctx, schema.ProfilesTable, schema.Predicate{"id": "racer"})
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("cart survives a new session", func(t *testing.T) {
		id := schema.LineIdentity{ProductID: "dup", Condition: schema.UsedCondition}

		first := core.NewSession(store, nil, nil, nil).Cart("shopper")
		require.NoError(t, first.Load(ctx))
		require.NoError(t, first.AddLine(ctx, id, 2, 100, schema.LineFields{Name: "Dup"}))
		require.NoError(t, first.AddLine(ctx, id, 1, 100, schema.LineFields{Name: "Dup"}))

		second := core.NewSession(store, nil, nil, nil).Cart("shopper")
		require.NoError(t, second.Load(ctx))
		line, ok := second.Cart().Line(id)
		require.True(t, ok)
		assert.Equal(t, 3, line.Quantity)
		assert.Equal(t, schema.Money(300), second.Cart().TotalPrice())
	})

	require.NoError(t, store.Close())
	require.NoError(t, recordstore.Clear(backend, connStr))
}
