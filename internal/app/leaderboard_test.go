package app_test

import (
	"context"
	"testing"

	"github.com/okian/arcade/internal/app"
	"github.com/okian/arcade/internal/domain/ranking"
	"github.com/okian/arcade/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLeaderboardView(t *testing.T) {
	Convey("Given a leaderboard view", t, func() {
		hidden := "https://th.bing.com/th/id/hidden"
		f := &fakeBackend{leaderboard: types.Leaderboard{
			Leaderboard: []types.LeaderboardEntry{
				{TeamName: "A", TotalPoints: 5},
				{TeamName: "B", TotalPoints: 9},
			},
			HiddenImage:    &hidden,
			ChallengeState: types.StateVoting,
		}}
		v := app.NewLeaderboardView(f)
		So(v.Phase, ShouldEqual, app.LeaderboardLoading)

		Convey("When it loads", func() {
			v.Load(context.Background())

			Convey("Then rows are ordered by total points descending", func() {
				So(v.Phase, ShouldEqual, app.LeaderboardLoaded)
				So(v.Rows, ShouldHaveLength, 2)
				So(v.Rows[0].TeamName, ShouldEqual, "B")
				So(v.Rows[1].TeamName, ShouldEqual, "A")
				So(v.Rows[0].Tier, ShouldEqual, ranking.TierGold)
				So(v.HiddenImage, ShouldEqual, hidden)
				So(v.Notices(), ShouldBeEmpty)
			})
		})

		Convey("When the fetch fails", func() {
			f.leaderboardErr = errBoom
			v.Load(context.Background())

			Convey("Then loading clears and a notice is raised", func() {
				So(v.Phase, ShouldEqual, app.LeaderboardLoaded)
				So(v.Rows, ShouldBeEmpty)
				So(v.Notices(), ShouldHaveLength, 1)
				So(v.Notices()[0].Title, ShouldEqual, "Failed to load leaderboard")
				So(v.Notices()[0].Level, ShouldEqual, app.LevelError)
			})
		})
	})
}
