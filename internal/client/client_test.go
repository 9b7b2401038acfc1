package client_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/goleak"

	"github.com/okian/arcade/internal/adapters/http/api"
	"github.com/okian/arcade/internal/adapters/upstream"
	"github.com/okian/arcade/internal/client"
	"github.com/okian/arcade/internal/config"
	"github.com/okian/arcade/internal/domain/types"
	"github.com/okian/arcade/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.Options{Output: io.Discard}); err != nil {
		os.Exit(1)
	}
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

// backend answers by "METHOD path" and records the last team header seen.
type backend struct {
	srv     *httptest.Server
	mu      sync.Mutex
	answers map[string]answer
	team    string
	path    string
}

type answer struct {
	status int
	body   string
}

func newBackend(answers map[string]answer) *backend {
	b := &backend{answers: answers}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.team = r.Header.Get(types.TeamHeader)
		b.path = r.URL.EscapedPath()
		a, ok := b.answers[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if !ok {
			a = answer{status: http.StatusNotFound, body: `{"detail":"not found"}`}
		}
		w.WriteHeader(a.status)
		_, _ = io.WriteString(w, a.body)
	}))
	return b
}

func (b *backend) lastTeam() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.team
}

func (b *backend) lastPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

func proxyClient(b *backend) *client.Client {
	r := chi.NewRouter()
	api.NewServer(upstream.New(config.StaticUpstream(b.srv.URL)), "arcade-test").Register(r)
	return client.New("", client.WithHandler(r))
}

func TestClientPicPerfect(t *testing.T) {
	Convey("Given a proxy in front of a pic-perfect backend", t, func() {
		b := newBackend(map[string]answer{
			"GET /pic-perfect/leaderboard": {200, `{"leaderboard":[{"teamName":"A","imageUrl":"u","totalPoints":5,"deceptionPoints":2,"discoveryPoints":3}],"hidden_image":null,"challenge_state":"voting"}`},
			"GET /pic-perfect/status":      {200, `{"challenge_state":"submission","extra":1}`},
			"GET /pic-perfect/team-status": {200, `{"has_submitted":true}`},
			"POST /pic-perfect/submit":     {200, `{"ok":true}`},
			"GET /pic-perfect/voting-pool": {200, `{"pool":[{"teamName":"B","imageUrl":"https://th.bing.com/th/id/b"}],"remaining_votes":2}`},
			"POST /pic-perfect/vote":       {200, `{"remaining_votes":1}`},
		})
		defer b.srv.Close()
		c := proxyClient(b)
		ctx := context.Background()

		Convey("Leaderboard decodes entries and phase", func() {
			lb, err := c.Leaderboard(ctx)
			So(err, ShouldBeNil)
			So(lb.Leaderboard, ShouldHaveLength, 1)
			So(lb.Leaderboard[0].TotalPoints, ShouldEqual, 5)
			So(lb.HiddenImage, ShouldBeNil)
			So(lb.ChallengeState, ShouldEqual, types.StateVoting)
		})

		Convey("Status ignores unknown fields", func() {
			st, err := c.Status(ctx)
			So(err, ShouldBeNil)
			So(st.ChallengeState, ShouldEqual, types.StateSubmission)
		})

		Convey("Team-scoped calls carry the team header", func() {
			ts, err := c.TeamStatus(ctx, "red")
			So(err, ShouldBeNil)
			So(ts.HasSubmitted, ShouldBeTrue)
			So(b.lastTeam(), ShouldEqual, "red")

			pool, err := c.VotingPool(ctx, "red")
			So(err, ShouldBeNil)
			So(pool.Pool, ShouldHaveLength, 1)
			So(*pool.RemainingVotes, ShouldEqual, 2)

			vr, err := c.Vote(ctx, "red", []string{"B"})
			So(err, ShouldBeNil)
			So(vr.RemainingVotes, ShouldEqual, 1)

			So(c.Submit(ctx, "red", types.SubmitRequest{ImageURL: "https://th.bing.com/th/id/x", Prompt: "p"}), ShouldBeNil)
		})

		Convey("A missing team surfaces as a 400 StatusError", func() {
			_, err := c.TeamStatus(ctx, "")
			So(errors.Is(err, client.ErrStatus), ShouldBeTrue)
			var se *client.StatusError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Status, ShouldEqual, http.StatusBadRequest)
			So(client.Message(err, "fallback"), ShouldEqual, "team-name header is required")
		})

		Convey("Validation details are kept", func() {
			err := c.Submit(ctx, "red", types.SubmitRequest{})
			var se *client.StatusError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Details, ShouldNotBeEmpty)
		})
	})
}

func TestClientChatHistory(t *testing.T) {
	Convey("Given chat history answers of different shapes", t, func() {
		ctx := context.Background()

		Convey("A bare array is accepted", func() {
			b := newBackend(map[string]answer{"GET /api/pubg/agent/chat": {200, `[{"role":"user","content":"hi"}]`}})
			defer b.srv.Close()
			msgs, err := proxyClient(b).ChatHistory(ctx, "red")
			So(err, ShouldBeNil)
			So(msgs, ShouldHaveLength, 1)
		})

		Convey("A messages object is accepted", func() {
			b := newBackend(map[string]answer{"GET /api/pubg/agent/chat": {200, `{"messages":[{"role":"assistant","content":"yo"},{"role":"user","content":"hi"}]}`}})
			defer b.srv.Close()
			msgs, err := proxyClient(b).ChatHistory(ctx, "red")
			So(err, ShouldBeNil)
			So(msgs, ShouldHaveLength, 2)
			So(msgs[0].Role, ShouldEqual, "assistant")
		})

		Convey("Anything else is an invalid format", func() {
			b := newBackend(map[string]answer{"GET /api/pubg/agent/chat": {200, `{"history":"nope"}`}})
			defer b.srv.Close()
			_, err := proxyClient(b).ChatHistory(ctx, "red")
			So(errors.Is(err, client.ErrInvalidFormat), ShouldBeTrue)
		})
	})
}

func TestClientAgent(t *testing.T) {
	Convey("Given an agent backend", t, func() {
		b := newBackend(map[string]answer{
			"GET /api/pubg/agent/state":           {200, `{"instructions":"be nice","temperature":0.4}`},
			"PATCH /api/pubg/agent/state":         {200, `{}`},
			"GET /api/pubg/agent/tool":            {200, `[{"name":"search","description":"d","type":"function","strict":true}]`},
			"GET /api/pubg/agent/available-tools": {200, `[{"name":"search"},{"name":"weather"}]`},
			"POST /api/pubg/agent/tool":           {200, `{"ok":true}`},
			"PATCH /api/pubg/agent/tool":          {200, `{"ok":true}`},
			"DELETE /api/pubg/agent/tool/my tool": {200, ``},
			"POST /api/pubg/agent/chat":           {500, `{"detail":"model down"}`},
		})
		defer b.srv.Close()
		c := proxyClient(b)
		ctx := context.Background()

		Convey("State round-trips", func() {
			st, err := c.AgentState(ctx, "red")
			So(err, ShouldBeNil)
			So(st.Instructions, ShouldEqual, "be nice")
			So(*st.Temperature, ShouldEqual, 0.4)

			msg, temp := "new", 1.1
			So(c.UpdateAgentState(ctx, "red", types.StateUpdate{SystemMessage: &msg, Temperature: &temp}), ShouldBeNil)
		})

		Convey("Tools and catalog decode", func() {
			tools, err := c.Tools(ctx, "red")
			So(err, ShouldBeNil)
			So(tools[0].Name, ShouldEqual, "search")
			catalog, err := c.AvailableTools(ctx, "red")
			So(err, ShouldBeNil)
			So(catalog, ShouldHaveLength, 2)
		})

		Convey("Tool mutations succeed", func() {
			So(c.CreateTool(ctx, "red", types.ToolRequest{ToolName: "weather", Description: "d"}), ShouldBeNil)
			So(c.UpdateTool(ctx, "red", types.ToolRequest{ToolName: "search", Description: "d2"}), ShouldBeNil)
			So(c.DeleteTool(ctx, "red", "my tool"), ShouldBeNil)
			So(b.lastPath(), ShouldEqual, "/api/pubg/agent/tool/my%20tool")
		})

		Convey("An upstream failure relays its message", func() {
			err := c.SendChat(ctx, "red", "hello")
			var se *client.StatusError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Status, ShouldEqual, http.StatusInternalServerError)
			So(se.Message, ShouldEqual, "model down")
		})
	})
}

func TestClientTransport(t *testing.T) {
	Convey("Given a client pointed at a closed server", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := client.New(srv.URL)

		Convey("Calls fail with ErrTransport", func() {
			_, err := c.Status(context.Background())
			So(errors.Is(err, client.ErrTransport), ShouldBeTrue)
		})
	})

	Convey("Given a raw call through Do", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = io.WriteString(w, "short and stout")
		}))
		defer srv.Close()

		resp, err := client.New(srv.URL+"/").Do(context.Background(), http.MethodGet, "/x", "", nil)
		So(err, ShouldBeNil)
		So(resp.Status, ShouldEqual, http.StatusTeapot)
		So(string(resp.Body), ShouldEqual, "short and stout")
	})
}
