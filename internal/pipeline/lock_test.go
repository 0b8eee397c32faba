package pipeline

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLocks(t *testing.T) {
	t.Run("should refuse a held key and allow it again after release", func(t *testing.T) {
		l := newRunLocks()
		key := lockKey("u1", KindRecipes)

		release, ok := l.tryLock(key)
		require.True(t, ok)
		_, ok = l.tryLock(key)
		assert.False(t, ok)

		other, ok := l.tryLock(lockKey("u1", KindShopping))
		require.True(t, ok)
		other()

		release()
		again, ok := l.tryLock(key)
		require.True(t, ok)
		again()
	})

	t.Run("should forget keys once released", func(t *testing.T) {
		l := newRunLocks()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if release, ok := l.tryLock(lockKey(fmt.Sprintf("u%d", i), KindMain)); ok {
					release()
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 0, l.size())
	})

	t.Run("should ignore a second release", func(t *testing.T) {
		l := newRunLocks()
		key := lockKey("u1", KindInventory)
		release, ok := l.tryLock(key)
		require.True(t, ok)
		release()

		next, ok := l.tryLock(key)
		require.True(t, ok)
		release()
		_, ok = l.tryLock(key)
		assert.False(t, ok, "stale release must not free the new holder")
		next()
	})
}
