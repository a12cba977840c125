package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colisflow/pkg/logger"
)

type memStore struct {
	mu      sync.Mutex
	entries []Entry
	err     error
	block   chan struct{}
}

func (s *memStore) Save(_ context.Context, e *Entry) error {
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *e)
	return nil
}

func (s *memStore) List(context.Context, Filter) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...), nil
}

type panicStore struct{ memStore }

func (s *panicStore) Save(context.Context, *Entry) error {
	panic("driver exploded")
}

func TestWriter_WritesSanitizedEntries(t *testing.T) {
	store := &memStore{}
	w := NewWriter(store, WriterConfig{QueueSize: 8, Workers: 2}, logger.Nop())

	ok := w.Submit(&Entry{
		Action:  ActionCreate,
		Entity:  "auth",
		Details: map[string]any{"body": map[string]any{"username": "admin", "password": "pw"}},
	})
	require.True(t, ok)
	require.NoError(t, w.Close(context.Background()))

	entries, _ := store.List(context.Background(), Filter{})
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "anonymous", e.UserID)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, Redacted, e.Details["body"].(map[string]any)["password"])
	assert.Equal(t, int64(1), w.Stats().Written)
}

func TestWriter_SubmitNeverBlocksWhenFull(t *testing.T) {
	store := &memStore{block: make(chan struct{})}
	w := NewWriter(store, WriterConfig{QueueSize: 1, Workers: 1}, logger.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			w.Submit(&Entry{Action: ActionCreate})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	stats := w.Stats()
	assert.Positive(t, stats.Dropped)
	assert.Equal(t, int64(50), stats.Submitted+stats.Dropped)

	close(store.block)
	require.NoError(t, w.Close(context.Background()))
}

func TestWriter_StoreFailuresAreAbsorbed(t *testing.T) {
	store := &memStore{err: errors.New("relation sys_audit does not exist")}
	w := NewWriter(store, WriterConfig{QueueSize: 4, Workers: 1}, logger.Nop())

	assert.True(t, w.Submit(&Entry{Action: ActionDelete}))
	require.NoError(t, w.Close(context.Background()))
	assert.Equal(t, int64(1), w.Stats().Failed)
}

func TestWriter_PanicsAreAbsorbed(t *testing.T) {
	w := NewWriter(&panicStore{}, WriterConfig{QueueSize: 4, Workers: 1}, logger.Nop())
	assert.True(t, w.Submit(&Entry{Action: ActionUpdate}))
	assert.True(t, w.Submit(&Entry{Action: ActionUpdate}))
	require.NoError(t, w.Close(context.Background()))
	assert.Equal(t, int64(2), w.Stats().Failed)
}

func TestWriter_SubmitAfterClose(t *testing.T) {
	w := NewWriter(&memStore{}, WriterConfig{QueueSize: 4, Workers: 1}, logger.Nop())
	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, w.Close(context.Background()))

	assert.False(t, w.Submit(&Entry{Action: ActionRead}))
	assert.Equal(t, int64(1), w.Stats().Dropped)
}

func TestWriter_CloseHonoursContext(t *testing.T) {
	store := &memStore{block: make(chan struct{})}
	defer close(store.block)
	w := NewWriter(store, WriterConfig{QueueSize: 4, Workers: 1}, logger.Nop())
	w.Submit(&Entry{Action: ActionCreate})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Close(ctx), context.DeadlineExceeded)
}
