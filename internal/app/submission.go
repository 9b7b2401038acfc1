package app

import (
	"context"
	"strings"
	"time"

	"github.com/okian/arcade/internal/client"
	"github.com/okian/arcade/internal/domain/types"
)

// SubmissionPhase is the state of the submission view.
type SubmissionPhase string

// Submission phases.
const (
	SubmissionLoading  SubmissionPhase = "loading"
	SubmissionChecking SubmissionPhase = "checking-status"
	SubmissionOpen     SubmissionPhase = "can-submit"
	SubmissionDone     SubmissionPhase = "already-submitted"
)

// SubmissionSource checks and records a team's entry.
type SubmissionSource interface {
	TeamStatus(ctx context.Context, team string) (types.TeamStatus, error)
	Submit(ctx context.Context, team string, req types.SubmitRequest) error
}

// SubmissionForm holds the entry fields. An image that failed to load blocks
// submission until RetryImage is called or the URL changes.
type SubmissionForm struct {
	prefix     string
	ImageURL   string
	Prompt     string
	imageError bool
}

// SetImageURL updates the URL. A different URL clears the image failure.
func (f *SubmissionForm) SetImageURL(u string) {
	if u != f.ImageURL {
		f.imageError = false
	}
	f.ImageURL = u
}

// Valid reports whether the URL carries the trusted prefix.
func (f *SubmissionForm) Valid() bool {
	return strings.HasPrefix(f.ImageURL, f.prefix)
}

// ImageFailed reports whether the current URL failed to load.
func (f *SubmissionForm) ImageFailed() bool { return f.imageError }

// MarkImageFailed blocks submission of the current URL.
func (f *SubmissionForm) MarkImageFailed() { f.imageError = true }

// RetryImage clears the image failure.
func (f *SubmissionForm) RetryImage() { f.imageError = false }

// CanSubmit reports whether the submit control is enabled.
func (f *SubmissionForm) CanSubmit() bool {
	return f.ImageURL != "" && f.Prompt != "" && !f.imageError
}

// Reset clears every field.
func (f *SubmissionForm) Reset() {
	f.ImageURL, f.Prompt, f.imageError = "", "", false
}

// TrustedPrefix is the required image URL prefix.
func (f *SubmissionForm) TrustedPrefix() string { return f.prefix }

// SubmissionView gates the entry form on the team's submission status.
type SubmissionView struct {
	board
	src     SubmissionSource
	team    string
	checker ImageChecker

	Phase SubmissionPhase
	Form  SubmissionForm
}

// NewSubmissionView creates the view for team.
func NewSubmissionView(src SubmissionSource, team string, opts ...Option) *SubmissionView {
	s := newSettings(opts)
	return &SubmissionView{
		board:   newBoard("submission", s.log),
		src:     src,
		team:    team,
		checker: s.checker,
		Phase:   SubmissionLoading,
		Form:    SubmissionForm{prefix: s.trustedPrefix},
	}
}

// Load checks the team's status. Without a team the view stays loading and
// nothing is fetched. A failed check leaves the form open.
func (v *SubmissionView) Load(ctx context.Context) {
	if v.team == "" {
		return
	}
	defer v.observe(time.Now())
	v.Phase = SubmissionChecking

	st, err := v.src.TeamStatus(ctx, v.team)
	if err != nil {
		v.fail(ctx, err, "Failed to check team status", "Please refresh the page to try again")
		v.Phase = SubmissionOpen
		return
	}
	if st.HasSubmitted {
		v.Phase = SubmissionDone
		return
	}
	v.Phase = SubmissionOpen
}

// Preview probes the image URL and marks the form when it does not load.
// It is a no-op without a checker or for an untrusted URL.
func (v *SubmissionView) Preview(ctx context.Context) {
	if v.checker == nil || v.Form.ImageURL == "" || !v.Form.Valid() || v.Form.ImageFailed() {
		return
	}
	if err := v.checker.CheckImage(ctx, v.Form.ImageURL); err != nil {
		v.Form.MarkImageFailed()
		v.log.Debug(ctx, "image preview failed")
		v.raise(Notice{
			Level:       LevelError,
			Title:       "Failed to load image",
			Description: "Please verify that the Bing image URL is correct and accessible.",
			Action:      "Retry",
		})
	}
}

// Submit sends the form. It reports whether the entry was recorded.
func (v *SubmissionView) Submit(ctx context.Context) bool {
	if v.Phase != SubmissionOpen {
		return false
	}
	if !v.Form.Valid() {
		v.fail(ctx, nil, "Please use a valid Bing image URL", "The URL should start with '"+v.Form.prefix+"'")
		return false
	}
	if v.Form.ImageFailed() {
		v.fail(ctx, nil, "Cannot submit with invalid image", "Please verify the image URL is correct and accessible")
		return false
	}
	if v.team == "" {
		v.fail(ctx, nil, "User not found", "Please make sure you are logged in")
		return false
	}

	err := v.src.Submit(ctx, v.team, types.SubmitRequest{ImageURL: v.Form.ImageURL, Prompt: v.Form.Prompt})
	if err != nil {
		v.fail(ctx, err, "Failed to submit challenge", client.Message(err, "Please try again later"))
		return false
	}
	v.success("Challenge submitted!", "Your entry has been recorded successfully.")
	v.Form.Reset()
	v.Phase = SubmissionDone
	return true
}
