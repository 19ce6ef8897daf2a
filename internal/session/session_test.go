// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/literature-helper/pkg/types"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration) (*Store, *clock) {
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	st := NewStore(ttl)
	st.now = c.now
	return st, c
}

// --- lifecycle ---

func TestCreateAndLookup(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	s := st.Create()

	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)

	got, ok := st.Lookup(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Len())
}

func TestGetCreatesOnFirstUse(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	id := uuid.NewString()

	s, created := st.Get(id)
	assert.True(t, created)
	assert.Equal(t, id, s.ID)

	again, created := st.Get(id)
	assert.False(t, created)
	assert.Same(t, s, again)
}

func TestGetReplacesInvalidID(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	s, created := st.Get("not-a-uuid")
	assert.True(t, created)
	assert.NotEqual(t, "not-a-uuid", s.ID)
	_, err := uuid.Parse(s.ID)
	assert.NoError(t, err)
}

func TestEndClearsState(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	s := st.Create()
	s.AppendExchange("how do I save?", "Enable saving.")
	s.SetReport(&types.Report{Query: "q"})

	assert.True(t, st.End(s.ID))
	assert.False(t, st.End(s.ID))
	assert.Empty(t, s.History())
	assert.Nil(t, s.Report())

	_, ok := st.Lookup(s.ID)
	assert.False(t, ok)

	fresh, created := st.Get(s.ID)
	assert.True(t, created)
	assert.Empty(t, fresh.History())
}

func TestSessionsExpire(t *testing.T) {
	st, c := newTestStore(30 * time.Minute)
	idle := st.Create()
	active := st.Create()

	c.advance(20 * time.Minute)
	_, ok := st.Lookup(active.ID)
	require.True(t, ok)

	c.advance(20 * time.Minute)
	_, ok = st.Lookup(idle.ID)
	assert.False(t, ok, "idle session should have expired")
	_, ok = st.Lookup(active.ID)
	assert.True(t, ok, "touched session should survive")
	assert.Equal(t, 1, st.Len())
}

func TestNewStoreDefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewStore(0).ttl)
}

// --- state ---

func TestHistoryIsCopied(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	s := st.Create()
	s.AppendExchange("q1", "a1")

	h := s.History()
	require.Len(t, h, 2)
	assert.Equal(t, types.RoleUser, h[0].Role)
	assert.Equal(t, types.RoleModel, h[1].Role)

	h[0].Text = "mutated"
	assert.Equal(t, "q1", s.History()[0].Text)
}

func TestExclusiveSerializes(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	s := st.Create()

	var mu sync.Mutex
	active, maxActive := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Exclusive(func() {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				active--
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxActive)
}
