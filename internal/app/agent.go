package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/arcade/internal/domain/schema"
	"github.com/okian/arcade/internal/domain/types"
)

// AgentSource reads and changes a team's agent configuration and tools.
type AgentSource interface {
	AgentState(ctx context.Context, team string) (types.AgentState, error)
	UpdateAgentState(ctx context.Context, team string, update types.StateUpdate) error
	Tools(ctx context.Context, team string) ([]types.Tool, error)
	AvailableTools(ctx context.Context, team string) ([]types.Tool, error)
	CreateTool(ctx context.Context, team string, req types.ToolRequest) error
	UpdateTool(ctx context.Context, team string, req types.ToolRequest) error
	DeleteTool(ctx context.Context, team, name string) error
}

// AgentView is the agent editor plus the function list. Tool mutations never
// patch Tools locally; each one is followed by a full re-read.
type AgentView struct {
	board
	src  AgentSource
	team string

	SystemMessage string
	Temperature   float64
	Tools         []types.Tool
	Catalog       []types.Tool
	Saving        bool
}

// NewAgentView creates the view for team.
func NewAgentView(src AgentSource, team string, opts ...Option) *AgentView {
	s := newSettings(opts)
	return &AgentView{
		board:       newBoard("agent", s.log),
		src:         src,
		team:        team,
		Temperature: s.temperature,
	}
}

// Load fetches state, tools and catalog concurrently. Each failure is
// reported on its own and leaves that part at its default.
func (v *AgentView) Load(ctx context.Context) {
	if v.team == "" {
		return
	}
	defer v.observe(time.Now())

	var (
		state                      types.AgentState
		tools, catalog             []types.Tool
		stateErr, toolsErr, catErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		state, stateErr = v.src.AgentState(gctx, v.team)
		return nil
	})
	g.Go(func() error {
		tools, toolsErr = v.src.Tools(gctx, v.team)
		return nil
	})
	g.Go(func() error {
		catalog, catErr = v.src.AvailableTools(gctx, v.team)
		return nil
	})
	_ = g.Wait()

	if stateErr != nil {
		v.fail(ctx, stateErr, "Failed to load agent configuration", "")
	} else {
		v.SystemMessage = state.Instructions
		if state.Temperature != nil {
			v.Temperature = *state.Temperature
		}
	}
	if toolsErr != nil {
		v.fail(ctx, toolsErr, "Failed to load functions", "")
	} else {
		v.Tools = tools
	}
	if catErr != nil {
		v.fail(ctx, catErr, "Failed to load available functions", "")
	} else {
		v.Catalog = catalog
	}
}

// SaveState sends the system message and temperature.
func (v *AgentView) SaveState(ctx context.Context, systemMessage string, temperature float64) bool {
	v.SystemMessage, v.Temperature = systemMessage, temperature
	v.Saving = true
	defer func() { v.Saving = false }()

	err := v.src.UpdateAgentState(ctx, v.team, types.StateUpdate{
		SystemMessage: &systemMessage,
		Temperature:   &temperature,
	})
	if err != nil {
		v.fail(ctx, err, "Failed to save agent configuration", "")
		return false
	}
	v.success("Agent configuration saved successfully", "")
	return true
}

// Addable returns catalog tools not yet configured for the team.
func (v *AgentView) Addable() []types.Tool {
	out := make([]types.Tool, 0, len(v.Catalog))
	for _, c := range v.Catalog {
		if !slices.ContainsFunc(v.Tools, func(t types.Tool) bool { return t.Name == c.Name }) {
			out = append(out, c)
		}
	}
	return out
}

// CanAdd reports whether anything is left to add, raising a notice if not.
func (v *AgentView) CanAdd() bool {
	if len(v.Addable()) == 0 {
		v.info("All available functions have been added")
		return false
	}
	return true
}

// CatalogDescription returns the catalog description used to prefill the add
// form for name.
func (v *AgentView) CatalogDescription(name string) string {
	i := slices.IndexFunc(v.Catalog, func(t types.Tool) bool { return t.Name == name })
	if i < 0 {
		return ""
	}
	return v.Catalog[i].Description
}

// AddTool creates a tool and re-reads the list.
func (v *AgentView) AddTool(ctx context.Context, name, description string) bool {
	if name == "" || description == "" {
		v.fail(ctx, nil, "Please select a function and provide a description", "")
		return false
	}
	if err := v.src.CreateTool(ctx, v.team, types.ToolRequest{ToolName: name, Description: description}); err != nil {
		v.fail(ctx, err, "Failed to add function", "")
		return false
	}
	v.success("Function added successfully", "")
	v.refreshTools(ctx)
	return true
}

// UpdateTool changes a tool description and re-reads the list.
func (v *AgentView) UpdateTool(ctx context.Context, name, description string) bool {
	description = strings.TrimSpace(description)
	if name == "" || description == "" {
		v.fail(ctx, nil, "Please select a function and provide a description", "")
		return false
	}
	if err := v.src.UpdateTool(ctx, v.team, types.ToolRequest{ToolName: name, Description: description}); err != nil {
		v.fail(ctx, err, fmt.Sprintf("Failed to update function %s", name), "")
		return false
	}
	v.success(fmt.Sprintf("Function %s updated successfully", name), "")
	v.refreshTools(ctx)
	return true
}

// DeleteTool removes a tool and re-reads the list.
func (v *AgentView) DeleteTool(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}
	if err := v.src.DeleteTool(ctx, v.team, name); err != nil {
		v.fail(ctx, err, fmt.Sprintf("Failed to delete function %s", name), "")
		return false
	}
	v.success(fmt.Sprintf("Function %s deleted successfully", name), "")
	v.refreshTools(ctx)
	return true
}

func (v *AgentView) refreshTools(ctx context.Context) {
	tools, err := v.src.Tools(ctx, v.team)
	if err != nil {
		v.fail(ctx, err, "Failed to load functions", "")
		return
	}
	v.Tools = tools
}

// ToolSchema parses the parameters of a configured tool.
func (v *AgentView) ToolSchema(name string) (*schema.Schema, error) {
	i := slices.IndexFunc(v.Tools, func(t types.Tool) bool { return t.Name == name })
	if i < 0 {
		return nil, fmt.Errorf("tool %q: %w", name, schema.ErrInvalidSchema)
	}
	return schema.Parse(v.Tools[i].Parameters)
}
