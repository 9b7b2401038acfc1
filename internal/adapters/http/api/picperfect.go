package api

import (
	"net/http"
)

// PicPerfectHandler proxies the image challenge endpoints.
type PicPerfectHandler struct {
	fwd *forwarder

	leaderboard, status, submit, teamStatus, vote, votingPool route
}

// newPicPerfectHandler creates the handler.
func newPicPerfectHandler(fwd *forwarder) *PicPerfectHandler {
	return &PicPerfectHandler{
		fwd: fwd,
		leaderboard: route{
			endpoint: "leaderboard", method: http.MethodGet, resource: "pic-perfect/leaderboard",
			fallback: "Failed to fetch leaderboard",
		},
		status: route{
			endpoint: "status", method: http.MethodGet, resource: "pic-perfect/status",
			fallback: "Failed to fetch challenge status",
		},
		submit: route{
			endpoint: "submit", method: http.MethodPost, resource: "pic-perfect/submit",
			teamScoped: true, schema: submitSchema, fallback: "Failed to submit challenge",
		},
		teamStatus: route{
			endpoint: "team_status", method: http.MethodGet, resource: "pic-perfect/team-status",
			teamScoped: true, fallback: "Failed to fetch team status",
		},
		vote: route{
			endpoint: "vote", method: http.MethodPost, resource: "pic-perfect/vote",
			teamScoped: true, schema: voteSchema, fallback: "Failed to submit votes",
		},
		votingPool: route{
			endpoint: "voting_pool", method: http.MethodGet, resource: "pic-perfect/voting-pool",
			teamScoped: true, fallback: "Failed to fetch voting pool",
		},
	}
}

// HandleLeaderboard handles GET /api/pic-perfect/leaderboard.
func (h *PicPerfectHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.leaderboard)
}

// HandleStatus handles GET /api/pic-perfect/status.
func (h *PicPerfectHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.status)
}

// HandleSubmit handles POST /api/pic-perfect/submit.
func (h *PicPerfectHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.submit)
}

// HandleTeamStatus handles GET /api/pic-perfect/team-status.
func (h *PicPerfectHandler) HandleTeamStatus(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.teamStatus)
}

// HandleVote handles POST /api/pic-perfect/vote.
func (h *PicPerfectHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.vote)
}

// HandleVotingPool handles GET /api/pic-perfect/voting-pool.
func (h *PicPerfectHandler) HandleVotingPool(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.votingPool)
}
