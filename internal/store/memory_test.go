package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

func TestUserPath(t *testing.T) {
	assert.Equal(t, "users/u1/inventory", UserPath("u1", SectionInventory))

	uid, ok := userFromPath("users/u1/shopping_list")
	assert.True(t, ok)
	assert.Equal(t, "u1", uid)

	_, ok = userFromPath("settings/global")
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("should return ErrNotFound for missing paths", func(t *testing.T) {
		var got []item
		err := NewMemoryStore().Get(ctx, UserPath("u1", SectionInventory), &got)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should replace the whole value on set", func(t *testing.T) {
		s := NewMemoryStore()
		path := UserPath("u1", SectionInventory)
		require.NoError(t, s.Set(ctx, path, []item{{"milk", "1"}, {"eggs", "6"}}))
		require.NoError(t, s.Set(ctx, path, []item{{"cheese", "1"}}))

		var got []item
		require.NoError(t, s.Get(ctx, path, &got))
		assert.Equal(t, []item{{"cheese", "1"}}, got)
	})

	t.Run("should not share memory with callers", func(t *testing.T) {
		s := NewMemoryStore()
		path := UserPath("u1", SectionInventory)
		in := []item{{"milk", "1"}}
		require.NoError(t, s.Set(ctx, path, in))
		in[0].Name = "changed"

		var got []item
		require.NoError(t, s.Get(ctx, path, &got))
		assert.Equal(t, "milk", got[0].Name)
	})

	t.Run("should delete", func(t *testing.T) {
		s := NewMemoryStore()
		path := UserPath("u1", SectionRecipes)
		require.NoError(t, s.Set(ctx, path, map[string]string{"inventorySummary": "x"}))
		require.NoError(t, s.Delete(ctx, path))
		require.NoError(t, s.Delete(ctx, path))

		var got map[string]string
		assert.ErrorIs(t, s.Get(ctx, path, &got), ErrNotFound)
	})

	t.Run("should reject an empty path", func(t *testing.T) {
		assert.Error(t, NewMemoryStore().Set(ctx, " ", 1))
	})
}

func TestMemoryStoreWatch(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := s.Watch(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), UserPath("u2", SectionInventory), []item{}))
	require.NoError(t, s.Set(context.Background(), UserPath("u1", SectionInventory), []item{{"milk", "1"}}))
	require.NoError(t, s.Delete(context.Background(), UserPath("u1", SectionInventory)))

	select {
	case c := <-changes:
		assert.Equal(t, "users/u1/inventory", c.Path)
		assert.JSONEq(t, `[{"name":"milk","quantity":"1"}]`, string(c.Value))
	case <-time.After(time.Second):
		t.Fatal("no change received")
	}

	select {
	case c := <-changes:
		assert.Equal(t, "users/u1/inventory", c.Path)
		assert.Nil(t, c.Value)
	case <-time.After(time.Second):
		t.Fatal("no delete received")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, open := <-changes:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
