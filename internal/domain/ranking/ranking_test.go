package ranking_test

import (
	"testing"

	"github.com/okian/arcade/internal/domain/ranking"
	"github.com/okian/arcade/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func names(entries []types.LeaderboardEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.TeamName
	}
	return out
}

func TestSort(t *testing.T) {
	Convey("Given entries in upstream order", t, func() {
		entries := []types.LeaderboardEntry{
			{TeamName: "A", TotalPoints: 5},
			{TeamName: "B", TotalPoints: 9},
		}

		Convey("When sorting", func() {
			sorted := ranking.Sort(entries)

			Convey("Then the highest total comes first", func() {
				So(names(sorted), ShouldResemble, []string{"B", "A"})
			})

			Convey("Then the input is not modified", func() {
				So(names(entries), ShouldResemble, []string{"A", "B"})
			})
		})

		Convey("When totals tie", func() {
			tied := []types.LeaderboardEntry{
				{TeamName: "X", TotalPoints: 3},
				{TeamName: "Y", TotalPoints: 7},
				{TeamName: "Z", TotalPoints: 3},
			}

			Convey("Then upstream order breaks the tie", func() {
				So(names(ranking.Sort(tied)), ShouldResemble, []string{"Y", "X", "Z"})
			})
		})

		Convey("When the list is empty", func() {
			So(ranking.Sort(nil), ShouldBeEmpty)
			So(ranking.Rank(nil), ShouldBeEmpty)
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given four teams", t, func() {
		rows := ranking.Rank([]types.LeaderboardEntry{
			{TeamName: "d", TotalPoints: 1},
			{TeamName: "a", TotalPoints: 40},
			{TeamName: "c", TotalPoints: 12},
			{TeamName: "b", TotalPoints: 30},
		})

		Convey("Then ranks are 1-based with tiers for the podium", func() {
			So(rows[0].TeamName, ShouldEqual, "a")
			So(rows[0].Rank, ShouldEqual, 1)
			So(rows[0].Tier, ShouldEqual, ranking.TierGold)
			So(rows[1].Tier, ShouldEqual, ranking.TierSilver)
			So(rows[2].Tier, ShouldEqual, ranking.TierBronze)
			So(rows[3].Tier, ShouldEqual, ranking.TierNone)
			So(rows[3].Rank, ShouldEqual, 4)
		})
	})
}

func TestPadPoints(t *testing.T) {
	Convey("Given point values", t, func() {
		So(ranking.PadPoints(0), ShouldEqual, "00")
		So(ranking.PadPoints(7), ShouldEqual, "07")
		So(ranking.PadPoints(10), ShouldEqual, "10")
		So(ranking.PadPoints(123), ShouldEqual, "123")
		So(ranking.PadPoints(-3), ShouldEqual, "-03")
	})
}
