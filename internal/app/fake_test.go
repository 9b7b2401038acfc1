package app_test

import (
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/okian/arcade/internal/domain/types"
	"github.com/okian/arcade/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.Options{Output: io.Discard}); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

var errBoom = errors.New("boom")

// fakeBackend is an in-memory upstream. Fields named *Err force a failure.
type fakeBackend struct {
	mu sync.Mutex

	leaderboard types.Leaderboard
	status      types.ChallengeStatus
	submitted   bool
	pool        types.VotingPool
	history     []types.APIMessage
	state       types.AgentState
	tools       []types.Tool
	catalog     []types.Tool

	leaderboardErr, statusErr, teamStatusErr, submitErr error
	poolErr, voteErr, historyErr, sendErr               error
	stateErr, toolsErr, catalogErr, mutateErr           error

	poolCalls  int
	toolsCalls int
	votes      [][]string
	lastUpdate types.StateUpdate
	onSend     func()
}

func (f *fakeBackend) Leaderboard(context.Context) (types.Leaderboard, error) {
	return f.leaderboard, f.leaderboardErr
}

func (f *fakeBackend) Status(context.Context) (types.ChallengeStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeBackend) TeamStatus(context.Context, string) (types.TeamStatus, error) {
	return types.TeamStatus{HasSubmitted: f.submitted}, f.teamStatusErr
}

func (f *fakeBackend) Submit(context.Context, string, types.SubmitRequest) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = true
	return nil
}

func (f *fakeBackend) VotingPool(context.Context, string) (types.VotingPool, error) {
	f.poolCalls++
	return f.pool, f.poolErr
}

func (f *fakeBackend) Vote(_ context.Context, _ string, teams []string) (types.VoteResponse, error) {
	if f.voteErr != nil {
		return types.VoteResponse{}, f.voteErr
	}
	f.votes = append(f.votes, teams)
	left := 0
	if f.pool.RemainingVotes != nil {
		left = *f.pool.RemainingVotes - len(teams)
		f.pool.RemainingVotes = &left
	}
	return types.VoteResponse{RemainingVotes: left}, nil
}

func (f *fakeBackend) ChatHistory(context.Context, string) ([]types.APIMessage, error) {
	return slices.Clone(f.history), f.historyErr
}

func (f *fakeBackend) SendChat(_ context.Context, _, msg string) error {
	if f.onSend != nil {
		f.onSend()
	}
	if f.sendErr != nil {
		return f.sendErr
	}
	f.history = append(f.history,
		types.APIMessage{Role: "user", Content: msg},
		types.APIMessage{Role: "assistant", Content: "ack: " + msg},
	)
	return nil
}

func (f *fakeBackend) AgentState(context.Context, string) (types.AgentState, error) {
	return f.state, f.stateErr
}

func (f *fakeBackend) UpdateAgentState(_ context.Context, _ string, u types.StateUpdate) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.lastUpdate = u
	return nil
}

func (f *fakeBackend) Tools(context.Context, string) ([]types.Tool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toolsCalls++
	return slices.Clone(f.tools), f.toolsErr
}

func (f *fakeBackend) AvailableTools(context.Context, string) ([]types.Tool, error) {
	return slices.Clone(f.catalog), f.catalogErr
}

func (f *fakeBackend) CreateTool(_ context.Context, _ string, req types.ToolRequest) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tools = append(f.tools, types.Tool{Name: req.ToolName, Description: req.Description, Type: "function"})
	return nil
}

func (f *fakeBackend) UpdateTool(_ context.Context, _ string, req types.ToolRequest) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tools {
		if f.tools[i].Name == req.ToolName {
			f.tools[i].Description = req.Description
		}
	}
	return nil
}

func (f *fakeBackend) DeleteTool(_ context.Context, _, name string) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tools = slices.DeleteFunc(f.tools, func(t types.Tool) bool { return t.Name == name })
	return nil
}

func intPtr(n int) *int { return &n }
