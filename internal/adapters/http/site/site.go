// Package site serves the server-rendered dashboard under /dashboard.
package site

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/arcade/internal/app"
	"github.com/okian/arcade/pkg/logger"
)

const (
	// TeamCookie holds the team name chosen on the identity form.
	TeamCookie  = "team-name"
	basePath    = "/dashboard"
	maxFormSize = 64 << 10
)

// Backend is everything the pages read from and write to.
type Backend interface {
	app.LeaderboardSource
	app.SubmissionSource
	app.VotingSource
	app.ChatSource
	app.AgentSource
}

// Option configures a Handler.
type Option func(*Handler)

// WithIdentityHeader sets the header an identity provider fills with the team.
func WithIdentityHeader(name string) Option {
	return func(h *Handler) {
		h.identityHeader = http.CanonicalHeaderKey(strings.TrimSpace(name))
	}
}

// WithViewOptions passes options to every view.
func WithViewOptions(opts ...app.Option) Option {
	return func(h *Handler) {
		h.viewOpts = append(h.viewOpts, opts...)
	}
}

// WithInstructions replaces the embedded instructions markdown.
func WithInstructions(md []byte) Option {
	return func(h *Handler) {
		if len(md) > 0 {
			h.instructions = md
		}
	}
}

// WithLogger sets the page logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// Handler renders the dashboard pages.
type Handler struct {
	backend        Backend
	identityHeader string
	viewOpts       []app.Option
	instructions   []byte
	pages          pages
	log            logger.Logger
}

// New creates the dashboard handler. Templates are parsed eagerly and a parse
// failure is returned.
func New(backend Backend, opts ...Option) (*Handler, error) {
	h := &Handler{
		backend:      backend,
		instructions: defaultInstructions(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Named("site")
	}
	p, err := parsePages()
	if err != nil {
		return nil, err
	}
	h.pages = p
	h.viewOpts = append([]app.Option{app.WithLogger(h.log)}, h.viewOpts...)
	return h, nil
}

// Register attaches the dashboard routes and redirects / to it.
func (h *Handler) Register(r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, basePath, http.StatusFound)
	})
	r.Route(basePath, func(r chi.Router) {
		r.Get("/", h.handleHome)
		r.Post("/identity", h.handleIdentity)
		r.Handle("/static/*", http.StripPrefix(basePath+"/static/", http.FileServer(FS())))

		r.Get("/pic-perfect/submit", h.handleSubmit)
		r.Post("/pic-perfect/submit", h.handleSubmit)
		r.Get("/pic-perfect/vote", h.handleVote)
		r.Post("/pic-perfect/vote", h.handleVote)
		r.Get("/pic-perfect/leaderboard", h.handleLeaderboard)

		r.Get("/pubg/mission", h.handleMission)
		r.Post("/pubg/mission/chat", h.handleMissionChat)
		r.Post("/pubg/mission/state", h.handleMissionState)
		r.Post("/pubg/mission/tools", h.handleMissionTools)
		r.Get("/pubg/instructions", h.handleInstructions)
	})
}

// team resolves the acting team: identity header first, then the cookie.
func (h *Handler) team(r *http.Request) string {
	if h.identityHeader != "" {
		if v := strings.TrimSpace(r.Header.Get(h.identityHeader)); v != "" {
			return v
		}
	}
	if c, err := r.Cookie(TeamCookie); err == nil {
		if v, err := url.QueryUnescape(c.Value); err == nil {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

type page struct {
	Title   string
	Team    string
	Path    string
	Notices []app.Notice
	View    any
}

func (h *Handler) page(r *http.Request, title string, notices []app.Notice, view any) page {
	return page{
		Title:   title,
		Team:    h.team(r),
		Path:    r.URL.Path,
		Notices: notices,
		View:    view,
	}
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "home", h.page(r, "Logic Arcade", nil, nil))
}

func (h *Handler) handleIdentity(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	team := strings.TrimSpace(r.PostForm.Get("team"))
	c := &http.Cookie{
		Name:     TeamCookie,
		Value:    url.QueryEscape(team),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if team == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
	http.Redirect(w, r, localPath(r.PostForm.Get("next")), http.StatusSeeOther)
}

// localPath keeps redirects inside the dashboard.
func localPath(next string) string {
	if strings.HasPrefix(next, basePath) && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	return basePath
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	v := app.NewLeaderboardView(h.backend, h.viewOpts...)
	v.Load(r.Context())
	h.render(w, r, "leaderboard", h.page(r, "Pic Perfect Leaderboard", v.Notices(), v))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	v := app.NewSubmissionView(h.backend, h.team(r), h.viewOpts...)
	v.Load(r.Context())

	if r.Method == http.MethodPost && h.parseForm(w, r) {
		f := r.PostForm
		imageURL := strings.TrimSpace(f.Get("image_url"))
		v.Form.SetImageURL(imageURL)
		v.Form.Prompt = strings.TrimSpace(f.Get("prompt"))
		// The failure flag survives a round trip only for the URL it was raised for.
		if f.Get("image_error") == "1" && f.Get("checked_url") == imageURL {
			v.Form.MarkImageFailed()
		}

		switch f.Get("action") {
		case "retry":
			v.Form.RetryImage()
			v.Preview(r.Context())
		case "preview":
			v.Preview(r.Context())
		default:
			v.Preview(r.Context())
			v.Submit(r.Context())
		}
	}
	h.render(w, r, "submit", h.page(r, "Submit Your Challenge Entry", v.Notices(), v))
}

func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	v := app.NewVotingView(h.backend, h.team(r), h.viewOpts...)
	v.Load(r.Context())

	if r.Method == http.MethodPost && h.parseForm(w, r) {
		v.Select(r.PostForm["team"])
		v.Submit(r.Context())
	}
	h.render(w, r, "vote", h.page(r, "Vote for the Best Recreation", v.Notices(), v))
}

type missionView struct {
	Chat     *app.ChatView
	Agent    *app.AgentView
	Schema   *schemaNode
	Selected string
	Prefill  string
}

func (h *Handler) mission(r *http.Request) missionView {
	ctx := r.Context()
	team := h.team(r)
	m := missionView{
		Chat:  app.NewChatView(h.backend, team, h.viewOpts...),
		Agent: app.NewAgentView(h.backend, team, h.viewOpts...),
	}
	m.Agent.Load(ctx)
	m.Chat.Load(ctx)
	return m
}

func (h *Handler) renderMission(w http.ResponseWriter, r *http.Request, m missionView) {
	if name := r.URL.Query().Get("schema"); name != "" {
		m.Selected = name
		if s, err := m.Agent.ToolSchema(name); err == nil {
			m.Schema = buildSchemaTree(s, s, "", false, 0)
		} else {
			h.log.Debug(r.Context(), "schema unavailable", logger.String("tool", name), logger.Error(err))
		}
	}
	if add := r.URL.Query().Get("add"); add != "" {
		m.Prefill = m.Agent.CatalogDescription(add)
	}
	notices := append(m.Agent.Notices(), m.Chat.Notices()...)
	h.render(w, r, "mission", h.page(r, "Capture the Prompt", notices, m))
}

func (h *Handler) handleMission(w http.ResponseWriter, r *http.Request) {
	h.renderMission(w, r, h.mission(r))
}

func (h *Handler) handleMissionChat(w http.ResponseWriter, r *http.Request) {
	m := h.mission(r)
	if h.parseForm(w, r) {
		m.Chat.Send(r.Context(), r.PostForm.Get("message"))
	}
	h.renderMission(w, r, m)
}

func (h *Handler) handleMissionState(w http.ResponseWriter, r *http.Request) {
	m := h.mission(r)
	if h.parseForm(w, r) {
		temp, err := strconv.ParseFloat(r.PostForm.Get("temperature"), 64)
		if err != nil || temp < 0 || temp > 2 {
			temp = m.Agent.Temperature
		}
		m.Agent.SaveState(r.Context(), r.PostForm.Get("system_message"), temp)
	}
	h.renderMission(w, r, m)
}

func (h *Handler) handleMissionTools(w http.ResponseWriter, r *http.Request) {
	m := h.mission(r)
	if h.parseForm(w, r) {
		f := r.PostForm
		name, desc := f.Get("tool_name"), f.Get("description")
		switch f.Get("action") {
		case "add":
			if m.Agent.CanAdd() {
				m.Agent.AddTool(r.Context(), name, desc)
			}
		case "update":
			m.Agent.UpdateTool(r.Context(), name, desc)
		case "delete":
			m.Agent.DeleteTool(r.Context(), name)
		}
	}
	h.renderMission(w, r, m)
}

func (h *Handler) handleInstructions(w http.ResponseWriter, r *http.Request) {
	body, err := renderMarkdown(h.instructions)
	if err != nil {
		h.log.Error(r.Context(), "render instructions", logger.Error(err))
	}
	h.render(w, r, "instructions", h.page(r, "Instructions", nil, body))
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		h.log.Debug(r.Context(), "invalid form", logger.Error(err))
		return false
	}
	return true
}
