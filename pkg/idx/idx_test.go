package idx_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lmsconsole/pkg/idx"
)

func TestNewParses(t *testing.T) {
	t.Parallel()

	id := idx.New()
	require.False(t, id.IsZero())
	require.Empty(t, id.Prefix())

	parsed, err := idx.Parse(" " + id.String() + "\n")
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestPrefixed(t *testing.T) {
	t.Parallel()

	id := idx.NewPrefixed("crs")
	require.Equal(t, "crs", id.Prefix())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestConcurrentIDsAreUniqueAndOrdered(t *testing.T) {
	t.Parallel()

	const n = 64
	ids := make([]idx.ID, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Go(func() { ids[i] = idx.New() })
	}
	wg.Wait()

	seen := make(map[idx.ID]bool, n)
	for _, id := range ids {
		require.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}

	a, b := idx.New(), idx.New()
	require.Less(t, a.String(), b.String())
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "   ", "not-a-ulid", "crs_nope"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, s)
	}
}

func TestTime(t *testing.T) {
	t.Parallel()

	tm := time.Unix(1700000000, 0)
	require.WithinDuration(t, tm, idx.NewAt(tm).Time(), time.Millisecond)
	require.True(t, idx.Zero.Time().IsZero())
}
