package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/testdb"
)

func TestRedisStore(t *testing.T) {
	client := testdb.SetupRedis(t)
	s := NewRedisStore(client, "test:", nil)
	ctx := context.Background()
	path := UserPath("u1", SectionShoppingList)

	t.Run("should round trip a document", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, path, []item{{"bread", "1"}}))

		var got []item
		require.NoError(t, s.Get(ctx, path, &got))
		assert.Equal(t, []item{{"bread", "1"}}, got)

		raw, err := client.Get(ctx, "test:users/u1/shopping_list").Result()
		require.NoError(t, err)
		assert.JSONEq(t, `[{"name":"bread","quantity":"1"}]`, raw)
	})

	t.Run("should return ErrNotFound after delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, path))
		var got []item
		assert.ErrorIs(t, s.Get(ctx, path, &got), ErrNotFound)
	})

	t.Run("should publish changes to watchers", func(t *testing.T) {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		changes, err := s.Watch(watchCtx, "u1")
		require.NoError(t, err)
		require.NoError(t, s.Set(ctx, path, []item{{"jam", "2"}}))

		select {
		case c := <-changes:
			assert.Equal(t, path, c.Path)
			assert.JSONEq(t, `[{"name":"jam","quantity":"2"}]`, string(c.Value))
		case <-time.After(5 * time.Second):
			t.Fatal("no change received")
		}
	})
}
