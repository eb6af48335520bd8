package chatlog

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsbot/internal/model"
)

func TestMemoryLog_AppendThenHistory(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, "s1", &model.ChatMessage{Role: model.RoleUser, Content: "hello"}))
	require.NoError(t, log.Append(ctx, "s1", &model.ChatMessage{Role: model.RoleAssistant, Content: "hi there"}))

	history, err := log.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, "hi there", history[1].Content)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
}

func TestMemoryLog_UnknownSessionIsEmpty(t *testing.T) {
	log := NewMemoryLog()

	history, err := log.History(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryLog_ClearIsIdempotent(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	require.NoError(t, log.Clear(ctx, "never-seen"))

	require.NoError(t, log.Append(ctx, "s1", &model.ChatMessage{Role: model.RoleUser, Content: "x"}))
	require.NoError(t, log.Clear(ctx, "s1"))
	require.NoError(t, log.Clear(ctx, "s1"))

	history, err := log.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryLog_SessionsAreIndependent(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, "a", &model.ChatMessage{Role: model.RoleUser, Content: "for a"}))
	require.NoError(t, log.Append(ctx, "b", &model.ChatMessage{Role: model.RoleUser, Content: "for b"}))
	require.NoError(t, log.Clear(ctx, "a"))

	historyA, err := log.History(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, historyA)

	historyB, err := log.History(ctx, "b")
	require.NoError(t, err)
	require.Len(t, historyB, 1)
	assert.Equal(t, "for b", historyB[0].Content)
}

func TestMemoryLog_ConcurrentAppendsLoseNothing(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				msg := &model.ChatMessage{Role: model.RoleUser, Content: fmt.Sprintf("w%d-%d", w, i)}
				assert.NoError(t, log.Append(ctx, "shared", msg))
			}
		}(w)
	}
	wg.Wait()

	history, err := log.History(ctx, "shared")
	require.NoError(t, err)
	require.Len(t, history, writers*perWriter)

	// IDs are assigned under the same lock as the append, so history order
	// must be strictly increasing.
	for i := 1; i < len(history); i++ {
		assert.Greater(t, history[i].ID, history[i-1].ID)
	}
}
