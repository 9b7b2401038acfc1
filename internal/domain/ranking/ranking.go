// Package ranking orders leaderboard entries on the client side and assigns
// presentation tiers. Upstream order is never trusted.
package ranking

import (
	"fmt"
	"slices"

	"github.com/okian/arcade/internal/domain/types"
)

// Tier is the visual treatment of a rank.
type Tier string

// Tiers for the first three places.
const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
	TierBronze Tier = "bronze"
	TierNone   Tier = ""
)

// Row is a ranked leaderboard entry ready for rendering.
type Row struct {
	types.LeaderboardEntry
	// Rank is 1-based.
	Rank int
	Tier Tier
}

// Sort returns a copy of entries ordered by TotalPoints descending. Ties keep
// their upstream order.
func Sort(entries []types.LeaderboardEntry) []types.LeaderboardEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b types.LeaderboardEntry) int {
		return b.TotalPoints - a.TotalPoints
	})
	return out
}

// Rank sorts entries and attaches rank and tier.
func Rank(entries []types.LeaderboardEntry) []Row {
	sorted := Sort(entries)
	rows := make([]Row, len(sorted))
	for i, e := range sorted {
		rows[i] = Row{LeaderboardEntry: e, Rank: i + 1, Tier: TierFor(i + 1)}
	}
	return rows
}

// TierFor maps a 1-based rank to a tier.
func TierFor(rank int) Tier {
	switch rank {
	case 1:
		return TierGold
	case 2:
		return TierSilver
	case 3:
		return TierBronze
	default:
		return TierNone
	}
}

// PadPoints renders points with at least two digits.
func PadPoints(points int) string {
	if points < 0 {
		return fmt.Sprintf("-%02d", -points)
	}
	return fmt.Sprintf("%02d", points)
}
