package app

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	closed atomic.Int32
}

func (s *fakeSession) Close() { s.closed.Add(1) }

func TestRegistryBindsOncePerSession(t *testing.T) {
	t.Parallel()

	r := NewRegistry[*fakeSession]()
	var created atomic.Int32
	create := func() *fakeSession {
		created.Add(1)
		return &fakeSession{}
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.GetOrCreate("s1", create)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), created.Load())

	s1, ok := r.Get("s1")
	require.True(t, ok)
	_, fresh := r.GetOrCreate("s2", create)
	require.True(t, fresh)
	require.Equal(t, []SessionID{"s1", "s2"}, r.IDs())

	require.True(t, r.Unbind("s1"))
	require.False(t, r.Unbind("s1"))
	require.Equal(t, int32(1), s1.closed.Load())

	s2, _ := r.Get("s2")
	r.CloseAll()
	require.Zero(t, r.Len())
	require.Equal(t, int32(1), s2.closed.Load())
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, KickMember, p.OnBackPressure("s", "ws"))

	p, err = ParsePolicy("drop")
	require.NoError(t, err)
	require.Equal(t, DropFrame, p.OnBackPressure("s", "ws"))

	_, err = ParsePolicy("retry")
	require.Error(t, err)
}
