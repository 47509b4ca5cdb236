package campaigncode

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCodes struct {
	mu    sync.Mutex
	codes map[string]bool
	calls int
}

func (m *memoryCodes) reserve(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.codes[code] {
		return false, nil
	}
	m.codes[code] = true
	return true, nil
}

func TestRandomShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := Random()
		require.NoError(t, err)
		require.Len(t, code, Length)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected symbol %q", r)
		}
	}
}

func TestGenerateUnique(t *testing.T) {
	store := &memoryCodes{codes: map[string]bool{}}
	g := NewGenerator()

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		code, err := g.Generate(context.Background(), store.reserve)
		require.NoError(t, err)
		require.False(t, seen[code])
		seen[code] = true
	}
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	store := &memoryCodes{codes: map[string]bool{"AAAAAAAA": true, "BBBBBBBB": true}}
	queue := []string{"AAAAAAAA", "BBBBBBBB", "CCCCCCCC"}
	g := &Generator{
		Source: func() (string, error) {
			next := queue[0]
			queue = queue[1:]
			return next, nil
		},
	}

	code, err := g.Generate(context.Background(), store.reserve)
	require.NoError(t, err)
	assert.Equal(t, "CCCCCCCC", code)
	assert.Equal(t, 3, store.calls)
}

func TestGenerateExhaustsAfterMaxAttempts(t *testing.T) {
	store := &memoryCodes{codes: map[string]bool{"DUPLICATE": true}}
	g := &Generator{Source: func() (string, error) { return "DUPLICATE", nil }}

	code, err := g.Generate(context.Background(), store.reserve)
	assert.ErrorIs(t, err, ErrConflictExhausted)
	assert.Empty(t, code)
	assert.Equal(t, MaxAttempts, store.calls)
	assert.Len(t, store.codes, 1)
}

func TestGenerateStopsOnStoreError(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	g := NewGenerator()

	_, err := g.Generate(context.Background(), func(context.Context, string) (bool, error) {
		calls++
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestNormalize(t *testing.T) {
	code, ok := Normalize(" abcd2345 ")
	require.True(t, ok)
	assert.Equal(t, "ABCD2345", code)

	for _, bad := range []string{"", "ABC", "ABCD23450", "ABCD1234", "ABCDO234", "ABCD-234"} {
		_, ok := Normalize(bad)
		assert.False(t, ok, bad)
	}
}
