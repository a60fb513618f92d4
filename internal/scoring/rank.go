package scoring

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RankEntry is one scored user of a month.
type RankEntry struct {
	UserID     string
	Name       string
	FinalScore decimal.Decimal
	Rank       int
}

// Rank orders entries by final score descending, then name and user ID
// ascending, and assigns ranks 1..N. The input slice is not modified.
func Rank(entries []RankEntry) []RankEntry {
	out := make([]RankEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].FinalScore.Cmp(out[j].FinalScore); c != 0 {
			return c > 0
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].UserID < out[j].UserID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
