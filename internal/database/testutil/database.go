package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/anima/internal/database"
	"github.com/jason-s-yu/anima/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// TestDatabase is a migrated postgres container plus a store on top of it.
type TestDatabase struct {
	Container *postgres.PostgresContainer
	DB        *database.DB
	Store     *database.Store
	URL       string
}

// SetupTestDatabase starts postgres, runs the embedded migrations and registers cleanup.
// Skipped with -short since it needs a docker daemon.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in -short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("anima_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{
			"test":      "anima-database",
			"test-name": t.Name(),
		}),
	)
	require.NoError(t, err)

	td := &TestDatabase{Container: container}
	t.Cleanup(func() { td.cleanup(t) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.MigrateUp(connStr))

	db, err := database.Connect(ctx, connStr, 4)
	require.NoError(t, err)

	td.DB = db
	td.Store = database.NewStore(db)
	td.URL = connStr
	return td
}

func (td *TestDatabase) cleanup(t *testing.T) {
	if td.DB != nil {
		td.DB.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := td.Container.Terminate(ctx); err != nil {
		t.Logf("warning: failed to terminate test container: %v", err)
	}
}

// CreateUser inserts a profile with the given starting balance (written directly, no ledger row).
func (td *TestDatabase) CreateUser(t *testing.T, email string, balance int64) *models.User {
	t.Helper()
	ctx := context.Background()
	u, err := td.Store.GetOrCreateUser(ctx, models.User{ID: uuid.New(), Email: email, FullName: email})
	require.NoError(t, err)
	if balance != 0 {
		_, err = td.DB.Exec(ctx, `UPDATE users SET anima_points_balance = $1 WHERE id = $2`, balance, u.ID)
		require.NoError(t, err)
		u.AnimaPointsBalance = balance
	}
	return u
}

// SetRole flips a user's role.
func (td *TestDatabase) SetRole(t *testing.T, id uuid.UUID, role string) {
	t.Helper()
	_, err := td.DB.Exec(context.Background(), `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	require.NoError(t, err)
}
