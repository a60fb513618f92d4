package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOrdersAndBreaksTies(t *testing.T) {
	entries := []RankEntry{
		{UserID: "u2", Name: "Bob", FinalScore: dec("80.00")},
		{UserID: "u4", Name: "Alice", FinalScore: dec("80.00")},
		{UserID: "u3", Name: "Carl", FinalScore: dec("90.50")},
		{UserID: "u1", Name: "Alice", FinalScore: dec("80.00")},
		{UserID: "u5", Name: "Dora", FinalScore: dec("12.00")},
	}

	ranked := Rank(entries)
	require.Len(t, ranked, len(entries))

	order := make([]string, len(ranked))
	for i, e := range ranked {
		order[i] = e.UserID
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, []string{"u3", "u1", "u4", "u2", "u5"}, order)
	assert.Zero(t, entries[0].Rank)
}

func TestRankIsBijection(t *testing.T) {
	entries := make([]RankEntry, 0, 20)
	for i := 0; i < 20; i++ {
		entries = append(entries, RankEntry{UserID: string(rune('a' + i)), Name: "Same", FinalScore: dec("50")})
	}
	ranked := Rank(entries)

	seen := make(map[int]bool, len(ranked))
	for _, e := range ranked {
		assert.False(t, seen[e.Rank])
		seen[e.Rank] = true
	}
	for r := 1; r <= len(entries); r++ {
		assert.True(t, seen[r])
	}
	assert.Empty(t, Rank(nil))
}
