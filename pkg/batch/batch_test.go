package batch_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apixtools/cisco-apix/pkg/batch"
)

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		items     []string
		blacklist batch.Blacklist
		want      []string
	}{
		{
			name:      "trims whitespace",
			items:     []string{"  WS-C3750X-48PF-S ", "\tC3KX-PWR-1100WAC\n"},
			blacklist: batch.DefaultEoXBlacklist,
			want:      []string{"WS-C3750X-48PF-S", "C3KX-PWR-1100WAC"},
		},
		{
			name:      "drops empty and whitespace-only items",
			items:     []string{"", "   ", "WS-C3750X-48PF-S"},
			blacklist: batch.DefaultEoXBlacklist,
			want:      []string{"WS-C3750X-48PF-S"},
		},
		{
			name:      "blacklist match is case-insensitive",
			items:     []string{"UNKNOWN", "Unspecified", "N/A", "WS-C3750X-48PF-S"},
			blacklist: batch.DefaultEoXBlacklist,
			want:      []string{"WS-C3750X-48PF-S"},
		},
		{
			name:      "dedup is case-sensitive, first occurrence wins",
			items:     []string{"ABC", "abc", "ABC", "XYZ"},
			blacklist: batch.NewBlacklist("", "n/a", "unknown"),
			want:      []string{"ABC", "abc", "XYZ"},
		},
		{
			name:      "blacklist scenario from field data",
			items:     []string{"ABC", " ", "N/A", "XYZ"},
			blacklist: batch.NewBlacklist("", "n/a", "unknown"),
			want:      []string{"ABC", "XYZ"},
		},
		{
			name:      "empty input",
			items:     nil,
			blacklist: batch.DefaultEoXBlacklist,
			want:      []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, batch.Clean(tt.items, tt.blacklist))
		})
	}
}

func TestPrepare_WindowSizes(t *testing.T) {
	t.Parallel()

	// 5 cleaned items with a window of 2 split into windows of 2, 2, 1.
	items := []string{"A", "B", "C", "D", "E"}
	windows := batch.Prepare(items, batch.NewBlacklist(""), 2)

	require.Len(t, windows, 3)
	assert.Equal(t, batch.Window{"A", "B"}, windows[0])
	assert.Equal(t, batch.Window{"C", "D"}, windows[1])
	assert.Equal(t, batch.Window{"E"}, windows[2])
}

func TestPrepare_Exhaustive(t *testing.T) {
	t.Parallel()

	// ceil(n/w) windows, disjoint, covering the cleaned set exactly once.
	for _, tc := range []struct {
		n, w, wantWindows int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{75, 75, 1},
		{150, 75, 2},
		{151, 75, 3},
	} {
		items := make([]string, tc.n)
		for i := range items {
			items[i] = fmt.Sprintf("PID-%03d", i)
		}

		windows := batch.Prepare(items, batch.NewBlacklist(""), tc.w)
		require.Len(t, windows, tc.wantWindows, "n=%d w=%d", tc.n, tc.w)

		seen := map[string]int{}
		for _, win := range windows {
			assert.LessOrEqual(t, len(win), tc.w, "window exceeds max size")
			for _, item := range win {
				seen[item]++
			}
		}
		assert.Len(t, seen, tc.n, "union of windows must equal the cleaned set")
		for item, count := range seen {
			assert.Equal(t, 1, count, "item %s must appear exactly once", item)
		}
	}
}

func TestPrepare_CleansBeforeWindowing(t *testing.T) {
	t.Parallel()

	items := []string{"A", "a", "A", "", "n/a", "B", "C"}
	windows := batch.Prepare(items, batch.NewBlacklist("", "n/a"), 2)

	require.Len(t, windows, 2)
	assert.Equal(t, batch.Window{"A", "a"}, windows[0])
	assert.Equal(t, batch.Window{"B", "C"}, windows[1])
}

func TestPrepare_DefaultWindowOnInvalidSize(t *testing.T) {
	t.Parallel()

	items := make([]string, batch.DefaultEoXWindow+1)
	for i := range items {
		items[i] = fmt.Sprintf("PID-%02d", i)
	}

	windows := batch.Prepare(items, batch.NewBlacklist(""), 0)
	assert.Len(t, windows, 2)
}

func TestDefaultBlacklists(t *testing.T) {
	t.Parallel()

	assert.True(t, batch.DefaultEoXBlacklist.Contains("^MF"))
	assert.True(t, batch.DefaultEoXBlacklist.Contains("X"))
	assert.False(t, batch.DefaultEoXBlacklist.Contains("WS-C3750X-48PF-S"))

	assert.True(t, batch.DefaultSerialBlacklist.Contains("Unknown"))
	assert.False(t, batch.DefaultSerialBlacklist.Contains("FTX1512AHK2"))
}
