// Package types contains the view models and wire shapes shared by the proxy,
// the client and the views.
package types

import (
	"encoding/json"
	"strings"
	"time"
)

// TeamHeader carries the acting team on every team-scoped request. It is the
// sole scoping key for team resources.
const TeamHeader = "team-name"

// ChallengeState is the upstream-owned phase of a challenge. The set is open;
// only the values below change client behaviour.
type ChallengeState string

// Known challenge phases.
const (
	StateSubmission ChallengeState = "submission"
	StateVoting     ChallengeState = "voting"
)

// LeaderboardEntry represents one team's standing.
type LeaderboardEntry struct {
	TeamName        string `json:"teamName"`
	ImageURL        string `json:"imageUrl"`
	ChallengeID     string `json:"challengeId,omitempty"`
	TotalPoints     int    `json:"totalPoints"`
	DeceptionPoints int    `json:"deceptionPoints"`
	DiscoveryPoints int    `json:"discoveryPoints"`
	VotedForHidden  *bool  `json:"votedForHidden,omitempty"`
}

// Leaderboard is the upstream leaderboard payload.
type Leaderboard struct {
	Leaderboard    []LeaderboardEntry `json:"leaderboard"`
	HiddenImage    *string            `json:"hidden_image"`
	ChallengeState ChallengeState     `json:"challenge_state"`
}

// ChallengeStatus is the upstream status payload. Other fields are ignored.
type ChallengeStatus struct {
	ChallengeState ChallengeState `json:"challenge_state"`
}

// TeamStatus reports whether a team already submitted.
type TeamStatus struct {
	HasSubmitted bool `json:"has_submitted"`
}

// VotingPoolEntry is a candidate in the voting phase.
type VotingPoolEntry struct {
	TeamName string `json:"teamName"`
	ImageURL string `json:"imageUrl"`
}

// VotingPool is the candidate list with the caller's remaining vote budget.
// RemainingVotes is nil when upstream does not report it.
type VotingPool struct {
	Pool           []VotingPoolEntry `json:"pool"`
	RemainingVotes *int              `json:"remaining_votes,omitempty"`
}

// SubmitRequest is the body of a challenge submission.
type SubmitRequest struct {
	ImageURL string `json:"image_url"`
	Prompt   string `json:"prompt"`
}

// VoteRequest carries the selected team names.
type VoteRequest struct {
	VotedTeams []string `json:"voted_teams"`
}

// VoteResponse is returned after votes are recorded.
type VoteResponse struct {
	RemainingVotes int    `json:"remaining_votes"`
	Message        string `json:"message,omitempty"`
}

// Sender identifies who wrote a chat message.
type Sender string

// Chat senders.
const (
	SenderUser   Sender = "user"
	SenderAI     Sender = "ai"
	SenderSystem Sender = "system"
)

// ChatMessage is one transcript entry as shown by the mission view.
type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// APIMessage is a chat entry in upstream format.
type APIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

// SenderForRole maps upstream roles to senders. Unknown roles are system.
func SenderForRole(role string) Sender {
	switch strings.ToLower(role) {
	case "assistant":
		return SenderAI
	case "user":
		return SenderUser
	default:
		return SenderSystem
	}
}

// ChatRequest is the body of a chat send.
type ChatRequest struct {
	Message string `json:"message"`
}

// AgentState is the agent configuration as returned upstream.
type AgentState struct {
	Instructions   string   `json:"instructions"`
	Temperature    *float64 `json:"temperature,omitempty"`
	LastResponseID string   `json:"last_response_id,omitempty"`
}

// StateUpdate is a partial agent configuration change. Nil fields are omitted.
type StateUpdate struct {
	SystemMessage  *string  `json:"system_message,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	LastResponseID *string  `json:"last_response_id,omitempty"`
}

// Tool is an agent-callable function configured for a team.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Strict      bool            `json:"strict"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ToolRequest creates or updates a team tool.
type ToolRequest struct {
	ToolName    string `json:"tool_name"`
	Description string `json:"description"`
}

// ErrorBody is the proxy error envelope.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
