package repositories

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sbilibin2017/gw-blog/internal/db"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres container test in short mode")
	}
	ctx := context.Background()

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := db.DSN(host, port.Int(), "postgres", "password", "testdb")

	var conn *sqlx.DB
	for i := 0; i < 10; i++ {
		conn, err = db.Connect(ctx, dsn, 20, 10)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.Migrate(ctx, conn))
	return conn
}

func TestIntegration_BlogRepositories(t *testing.T) {
	conn := setupPostgres(t)
	ctx := context.Background()

	userReader := NewUserReadRepository(conn, nil)
	userWriter := NewUserWriteRepository(conn, nil)
	postReader := NewPostReadRepository(conn, nil)
	postWriter := NewPostWriteRepository(conn, nil)
	commentReader := NewCommentReadRepository(conn, nil)
	commentWriter := NewCommentWriteRepository(conn, nil)

	alice := &models.UserDB{FirstName: "Alice", LastName: "Smith", Email: "alice@example.com", Username: "alice", Password: "digest"}
	require.NoError(t, userWriter.Save(ctx, alice))
	assert.NotZero(t, alice.ID)

	t.Run("duplicate email is a unique violation", func(t *testing.T) {
		dup := &models.UserDB{FirstName: "A", LastName: "S", Email: "alice@example.com", Username: "alice2", Password: "digest"}
		assert.ErrorIs(t, userWriter.Save(ctx, dup), ErrUniqueViolation)

		exists, err := userReader.ExistsByUsernameOrEmail(ctx, "someone", "alice@example.com")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	post := &models.PostDB{Title: "Hello World", Body: "first", UserID: alice.ID}
	require.NoError(t, postWriter.Create(ctx, post))
	other := &models.PostDB{Title: "Unrelated", Body: "second", UserID: alice.ID}
	require.NoError(t, postWriter.Create(ctx, other))

	t.Run("case-insensitive title search", func(t *testing.T) {
		posts, err := postReader.List(ctx, "WORLD")
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, post.ID, posts[0].ID)
		assert.Equal(t, "alice", posts[0].Author.Username)

		posts, err = postReader.List(ctx, "%")
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("comments cascade with their post", func(t *testing.T) {
		comment := &models.CommentDB{Body: "nice", UserID: alice.ID, PostID: post.ID}
		require.NoError(t, commentWriter.Create(ctx, comment))

		comments, err := commentReader.ListByPostIDs(ctx, []int64{post.ID, other.ID})
		require.NoError(t, err)
		require.Len(t, comments, 1)

		require.NoError(t, postWriter.Delete(ctx, post.ID))
		got, err := commentReader.GetByID(ctx, comment.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("token pair constraint", func(t *testing.T) {
		_, err := conn.ExecContext(ctx, `UPDATE users SET token = 'half' WHERE id = $1`, alice.ID)
		assert.Error(t, err)
	})

	t.Run("locked token refresh serializes", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tx, err := conn.BeginTxx(ctx, nil)
				if !assert.NoError(t, err) {
					return
				}
				txRepo := NewUserWriteRepository(conn, func(context.Context) *sqlx.Tx { return tx })
				u, err := txRepo.LockByID(ctx, alice.ID)
				if assert.NoError(t, err) && u.Token == nil {
					assert.NoError(t, txRepo.SaveToken(ctx, alice.ID, fmt.Sprintf("token-%d", i), time.Now().Add(time.Hour)))
				}
				assert.NoError(t, tx.Commit())
			}(i)
		}
		wg.Wait()

		u, err := userReader.GetByUsername(ctx, alice.Username)
		require.NoError(t, err)
		require.NotNil(t, u.Token)
		require.NotNil(t, u.TokenExpiration)

		byToken, err := userReader.GetByToken(ctx, *u.Token)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byToken.ID)
	})
}
