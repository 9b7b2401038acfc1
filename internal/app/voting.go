package app

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/okian/arcade/internal/client"
	"github.com/okian/arcade/internal/domain/types"
)

// VotingPhase is the state of the voting view.
type VotingPhase string

// Voting phases.
const (
	VotingLoading   VotingPhase = "loading"
	VotingDisabled  VotingPhase = "disabled"
	VotingPoolEmpty VotingPhase = "pool-empty"
	VotingActive    VotingPhase = "active"
	VotingExhausted VotingPhase = "exhausted"
)

// VotingSource reads the phase and pool and records votes.
type VotingSource interface {
	Status(ctx context.Context) (types.ChallengeStatus, error)
	VotingPool(ctx context.Context, team string) (types.VotingPool, error)
	Vote(ctx context.Context, team string, votedTeams []string) (types.VoteResponse, error)
}

// Candidate is a pool entry as rendered.
type Candidate struct {
	types.VotingPoolEntry
	Selectable bool
	Selected   bool
}

// VotingView lets a team pick up to its remaining votes from the pool.
type VotingView struct {
	board
	src      VotingSource
	team     string
	maxVotes int
	selected []string

	Phase      VotingPhase
	State      types.ChallengeState
	Candidates []Candidate
	Remaining  int
}

// NewVotingView creates the view for team.
func NewVotingView(src VotingSource, team string, opts ...Option) *VotingView {
	s := newSettings(opts)
	return &VotingView{
		board:    newBoard("voting", s.log),
		src:      src,
		team:     team,
		maxVotes: s.maxVotes,
		Phase:    VotingLoading,
	}
}

// Load fetches the phase and, only in the voting phase, the pool.
func (v *VotingView) Load(ctx context.Context) {
	if v.team == "" {
		return
	}
	defer v.observe(time.Now())

	st, err := v.src.Status(ctx)
	if err != nil {
		v.fail(ctx, err, "Failed to fetch challenge status", "Please refresh the page to try again")
		v.Phase = VotingDisabled
		return
	}
	v.State = st.ChallengeState
	if st.ChallengeState != types.StateVoting {
		v.Phase = VotingDisabled
		return
	}

	pool, err := v.src.VotingPool(ctx, v.team)
	if err != nil {
		v.fail(ctx, err, "Failed to load voting pool", "Please refresh the page to try again")
		v.Phase = VotingPoolEmpty
		return
	}
	v.Candidates = v.Candidates[:0]
	for _, e := range pool.Pool {
		if e.TeamName == v.team {
			continue
		}
		v.Candidates = append(v.Candidates, Candidate{VotingPoolEntry: e, Selectable: absoluteURL(e.ImageURL)})
	}
	v.Remaining = v.maxVotes
	if pool.RemainingVotes != nil {
		v.Remaining = *pool.RemainingVotes
	}
	v.settle()
}

func (v *VotingView) settle() {
	switch {
	case v.Remaining <= 0:
		v.Phase = VotingExhausted
	case len(v.Candidates) == 0:
		v.Phase = VotingPoolEmpty
	default:
		v.Phase = VotingActive
	}
}

// Toggle flips the selection of team. It reports whether the selection changed.
func (v *VotingView) Toggle(team string) bool {
	if v.Phase != VotingActive {
		return false
	}
	i := slices.IndexFunc(v.Candidates, func(c Candidate) bool { return c.TeamName == team })
	if i < 0 || !v.Candidates[i].Selectable {
		return false
	}
	if v.Candidates[i].Selected {
		v.Candidates[i].Selected = false
		v.selected = slices.DeleteFunc(v.selected, func(s string) bool { return s == team })
		return true
	}
	if len(v.selected) >= v.Remaining {
		v.fail(context.Background(), nil, fmt.Sprintf("You can only select up to %d images", v.Remaining), "")
		return false
	}
	v.Candidates[i].Selected = true
	v.selected = append(v.selected, team)
	return true
}

// Select replaces the selection with teams, in order, honouring the bound.
func (v *VotingView) Select(teams []string) {
	for _, t := range slices.Clone(v.selected) {
		v.Toggle(t)
	}
	for _, t := range teams {
		if !slices.Contains(v.selected, t) {
			v.Toggle(t)
		}
	}
}

// Selected returns the selected team names in selection order.
func (v *VotingView) Selected() []string { return slices.Clone(v.selected) }

// Submit posts the selection and applies the returned vote budget.
func (v *VotingView) Submit(ctx context.Context) bool {
	if v.Phase != VotingActive {
		return false
	}
	if len(v.selected) == 0 {
		v.fail(ctx, nil, "Please select at least one image", "")
		return false
	}
	resp, err := v.src.Vote(ctx, v.team, v.Selected())
	if err != nil {
		v.fail(ctx, err, "Failed to submit votes", client.Message(err, "Please try again later"))
		return false
	}
	msg := resp.Message
	if msg == "" {
		msg = "Your votes have been recorded."
	}
	v.success("Votes submitted!", msg)
	for i := range v.Candidates {
		v.Candidates[i].Selected = false
	}
	v.selected = nil
	v.Remaining = resp.RemainingVotes
	v.settle()
	return true
}

func absoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}
