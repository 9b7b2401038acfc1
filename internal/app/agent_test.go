package app_test

import (
	"context"
	"encoding/json"
	"slices"
	"testing"

	"github.com/okian/arcade/internal/app"
	"github.com/okian/arcade/internal/domain/schema"
	"github.com/okian/arcade/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func toolNames(tools []types.Tool) []string {
	out := make([]string, len(tools))
	for i, t := range tools {
		out[i] = t.Name
	}
	return out
}

func TestAgentViewLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given an agent with state, tools and catalog", t, func() {
		temp := 1.3
		f := &fakeBackend{
			state:   types.AgentState{Instructions: "hunt", Temperature: &temp},
			tools:   []types.Tool{{Name: "X", Description: "x tool"}},
			catalog: []types.Tool{{Name: "X", Description: "x"}, {Name: "Y", Description: "y default"}},
		}
		v := app.NewAgentView(f, "red")
		v.Load(ctx)

		Convey("Then every part is populated", func() {
			So(v.SystemMessage, ShouldEqual, "hunt")
			So(v.Temperature, ShouldEqual, 1.3)
			So(toolNames(v.Tools), ShouldResemble, []string{"X"})
			So(toolNames(v.Addable()), ShouldResemble, []string{"Y"})
			So(v.CatalogDescription("Y"), ShouldEqual, "y default")
			So(v.CatalogDescription("Z"), ShouldEqual, "")
		})
	})

	Convey("Given state without temperature and a failing catalog", t, func() {
		f := &fakeBackend{catalogErr: errBoom}
		v := app.NewAgentView(f, "red", app.WithDefaultTemperature(0.7))
		v.Load(ctx)

		Convey("Then defaults apply and one notice is raised", func() {
			So(v.Temperature, ShouldEqual, 0.7)
			So(v.SystemMessage, ShouldEqual, "")
			So(v.Notices(), ShouldHaveLength, 1)
			So(v.Notices()[0].Title, ShouldEqual, "Failed to load available functions")
		})
	})

	Convey("Given no team", t, func() {
		f := &fakeBackend{}
		app.NewAgentView(f, "").Load(ctx)
		So(f.toolsCalls, ShouldEqual, 0)
	})
}

func TestAgentViewTools(t *testing.T) {
	ctx := context.Background()

	Convey("Given a configured tool X", t, func() {
		f := &fakeBackend{
			tools:   []types.Tool{{Name: "X", Description: "old"}},
			catalog: []types.Tool{{Name: "X"}, {Name: "Y"}},
		}
		v := app.NewAgentView(f, "red")
		v.Load(ctx)

		Convey("When X is deleted", func() {
			So(v.DeleteTool(ctx, "X"), ShouldBeTrue)

			Convey("Then the re-read list lacks X and X is addable again", func() {
				So(slices.Contains(toolNames(v.Tools), "X"), ShouldBeFalse)
				So(slices.Contains(toolNames(v.Addable()), "X"), ShouldBeTrue)
				So(v.Notices()[0].Title, ShouldEqual, "Function X deleted successfully")
			})
		})

		Convey("When the description is updated", func() {
			So(v.UpdateTool(ctx, "X", "  new description "), ShouldBeTrue)

			Convey("Then the next list fetch reflects it", func() {
				So(v.Tools[0].Description, ShouldEqual, "new description")
			})
		})

		Convey("When Y is added", func() {
			calls := f.toolsCalls
			So(v.AddTool(ctx, "Y", "why"), ShouldBeTrue)
			So(f.toolsCalls, ShouldEqual, calls+1)
			So(toolNames(v.Tools), ShouldResemble, []string{"X", "Y"})

			Convey("Then nothing is left to add", func() {
				So(v.CanAdd(), ShouldBeFalse)
				last := v.Notices()[len(v.Notices())-1]
				So(last.Level, ShouldEqual, app.LevelInfo)
				So(last.Title, ShouldEqual, "All available functions have been added")
			})
		})

		Convey("When adding without a description", func() {
			So(v.AddTool(ctx, "Y", ""), ShouldBeFalse)
			So(v.Notices()[0].Title, ShouldEqual, "Please select a function and provide a description")
		})

		Convey("When a mutation fails", func() {
			f.mutateErr = errBoom
			calls := f.toolsCalls
			So(v.DeleteTool(ctx, "X"), ShouldBeFalse)
			So(f.toolsCalls, ShouldEqual, calls)
			So(v.Notices()[0].Title, ShouldEqual, "Failed to delete function X")
		})
	})
}

func TestAgentViewState(t *testing.T) {
	Convey("Given an agent view", t, func() {
		f := &fakeBackend{}
		v := app.NewAgentView(f, "red")

		Convey("When saving", func() {
			So(v.SaveState(context.Background(), "be brief", 0.2), ShouldBeTrue)
			So(*f.lastUpdate.SystemMessage, ShouldEqual, "be brief")
			So(*f.lastUpdate.Temperature, ShouldEqual, 0.2)
			So(f.lastUpdate.LastResponseID, ShouldBeNil)
			So(v.Notices()[0].Title, ShouldEqual, "Agent configuration saved successfully")
		})

		Convey("When saving fails", func() {
			f.mutateErr = errBoom
			So(v.SaveState(context.Background(), "x", 1), ShouldBeFalse)
			So(v.Notices()[0].Title, ShouldEqual, "Failed to save agent configuration")
		})
	})

	Convey("Given a tool with parameters", t, func() {
		params := json.RawMessage(`{"type":"object","properties":{"q":{"type":"string"}},"required":["q"],"additionalProperties":false}`)
		f := &fakeBackend{tools: []types.Tool{{Name: "search", Parameters: params}}}
		v := app.NewAgentView(f, "red")
		v.Load(context.Background())

		s, err := v.ToolSchema("search")
		So(err, ShouldBeNil)
		So(s.Kind, ShouldEqual, schema.KindObject)
		So(s.ClosedObject(), ShouldBeTrue)

		_, err = v.ToolSchema("missing")
		So(err, ShouldNotBeNil)
	})
}
