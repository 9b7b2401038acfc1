package app

import (
	"context"
	"time"

	"github.com/okian/arcade/internal/domain/ranking"
	"github.com/okian/arcade/internal/domain/types"
)

// LeaderboardPhase is the state of the leaderboard view.
type LeaderboardPhase string

// Leaderboard phases.
const (
	LeaderboardLoading LeaderboardPhase = "loading"
	LeaderboardLoaded  LeaderboardPhase = "loaded"
)

// LeaderboardSource fetches the public leaderboard.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context) (types.Leaderboard, error)
}

// LeaderboardView ranks teams by total points.
type LeaderboardView struct {
	board
	src LeaderboardSource

	Phase          LeaderboardPhase
	Rows           []ranking.Row
	HiddenImage    string
	ChallengeState types.ChallengeState
}

// NewLeaderboardView creates the view in the loading phase.
func NewLeaderboardView(src LeaderboardSource, opts ...Option) *LeaderboardView {
	s := newSettings(opts)
	return &LeaderboardView{
		board: newBoard("leaderboard", s.log),
		src:   src,
		Phase: LeaderboardLoading,
	}
}

// Load fetches and ranks the leaderboard. The view is loaded afterwards even
// when the fetch fails.
func (v *LeaderboardView) Load(ctx context.Context) {
	defer v.observe(time.Now())
	defer func() { v.Phase = LeaderboardLoaded }()

	lb, err := v.src.Leaderboard(ctx)
	if err != nil {
		v.fail(ctx, err, "Failed to load leaderboard", "Please refresh the page to try again")
		return
	}
	v.Rows = ranking.Rank(lb.Leaderboard)
	v.ChallengeState = lb.ChallengeState
	if lb.HiddenImage != nil {
		v.HiddenImage = *lb.HiddenImage
	}
}
