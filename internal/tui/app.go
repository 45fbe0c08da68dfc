// Package tui is the administrator console: a bubbletea program over the
// StreetVoice SDK for listing, filtering and moderating reports.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
	"github.com/noah-isme/streetvoice-api/pkg/client"
)

type screen int

const (
	screenLogin screen = iota
	screenReports
	screenAdvice
	screenStats
)

// Backend is the API surface the console drives. *client.Client satisfies it.
type Backend interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*dto.TokenResponse, error)
	LoginGoogle(ctx context.Context, idToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context) error
	ListReports(ctx context.Context, q client.ListQuery) (*client.ReportPage, error)
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (models.ReportStatus, error)
	Suggest(ctx context.Context, report models.Report) (string, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// TokenKeeper persists the access token between runs.
type TokenKeeper interface {
	Save(token string) error
	Clear() error
}

// Options wires an App.
type Options struct {
	Backend     Backend
	Store       TokenKeeper
	Session     *client.OAuthSession
	Credentials client.CredentialProvider
	PageSize    int
	Logger      *zap.Logger
}

var (
	statusChoices = append([]models.ReportStatus{""}, models.AllStatuses...)
	tagChoices    = append([]models.Tag{""}, models.AllTags...)
)

type sessionMsg struct{ ok bool }

type loginMsg struct {
	path string
	err  error
}

type feedMsg struct{ err error }

type saveMsg struct {
	id  string
	err error
}

type adviceMsg struct {
	report models.Report
	text   string
	err    error
}

type statsMsg struct {
	stats *models.DashboardStats
	err   error
}

type logoutMsg struct{ err error }

// App is the console model.
type App struct {
	ctx     context.Context
	backend Backend
	auth    *client.Authenticator
	creds   client.CredentialProvider
	feed    *client.Feed
	mod     *client.Moderator
	advisor *client.Advisor
	notices *client.Notices
	logger  *zap.Logger
	keys    keyMap
	help    help.Model

	screen     screen
	email      textinput.Model
	password   textinput.Model
	search     textinput.Model
	loginFocus int
	searching  bool

	cursor      int
	statusIndex int
	tagIndex    int

	advice    viewport.Model
	adviceFor string
	stats     *models.DashboardStats

	status string
	err    string
	width  int
	height int
}

// NewApp builds the console. ctx bounds every API call it makes.
func NewApp(ctx context.Context, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notices := client.NewNotices()
	feed := client.NewFeed(opts.Backend, opts.PageSize)

	a := &App{
		ctx:      ctx,
		backend:  opts.Backend,
		auth:     client.NewAuthenticator(opts.Backend, opts.Store, opts.Session),
		creds:    opts.Credentials,
		feed:     feed,
		mod:      client.NewModerator(opts.Backend, feed, notices),
		advisor:  client.NewAdvisor(opts.Backend, notices),
		notices:  notices,
		logger:   logger,
		keys:     defaultKeys(),
		help:     help.New(),
		screen:   screenLogin,
		email:    newInput("email", false),
		password: newInput("password", true),
		search:   newInput("search location, description or tag", false),
		advice:   viewport.New(80, 20),
		width:    100,
		height:   30,
	}
	a.email.Focus()
	return a
}

func newInput(placeholder string, secret bool) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 200
	in.Cursor.SetMode(cursor.CursorStatic)
	if secret {
		in.EchoMode = textinput.EchoPassword
	}
	return in
}

// Init resumes a stored session when one exists.
func (a *App) Init() tea.Cmd {
	return func() tea.Msg {
		if a.creds == nil {
			return sessionMsg{}
		}
		_, err := a.creds.ResolveToken(a.ctx)
		return sessionMsg{ok: err == nil}
	}
}

// Update handles one message.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.advice.Width = max(20, msg.Width-4)
		a.advice.Height = max(5, msg.Height-6)
		return a, nil
	case sessionMsg:
		if !msg.ok {
			return a, nil
		}
		a.screen = screenReports
		return a, a.applyCmd()
	case loginMsg:
		return a.handleLogin(msg)
	case feedMsg:
		a.handleFeed(msg)
		return a, nil
	case saveMsg:
		switch {
		case errors.Is(msg.err, client.ErrSaveInFlight):
			a.status = "Save already in progress."
		case errors.Is(msg.err, client.ErrNothingToSave):
			a.status = "Nothing to save."
		default:
			a.takeNotice()
		}
		return a, nil
	case adviceMsg:
		return a.handleAdvice(msg), nil
	case statsMsg:
		if msg.err != nil {
			a.err = client.DetailOr(msg.err, "Failed to load dashboard.")
			return a, nil
		}
		a.stats = msg.stats
		a.screen = screenStats
		return a, nil
	case logoutMsg:
		a.screen = screenLogin
		a.status = "Logged out."
		if msg.err != nil {
			a.logger.Warn("logout call failed", zap.Error(msg.err))
		}
		return a, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		switch a.screen {
		case screenLogin:
			return a.updateLogin(msg)
		case screenReports:
			return a.updateReports(msg)
		case screenAdvice:
			if key.Matches(msg, a.keys.Back) {
				a.screen = screenReports
				return a, nil
			}
			var cmd tea.Cmd
			a.advice, cmd = a.advice.Update(msg)
			return a, cmd
		case screenStats:
			if key.Matches(msg, a.keys.Back) || key.Matches(msg, a.keys.Quit) {
				a.screen = screenReports
			}
			return a, nil
		}
	}
	return a, nil
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		a.loginFocus = 1 - a.loginFocus
		if a.loginFocus == 0 {
			a.password.Blur()
			a.email.Focus()
		} else {
			a.email.Blur()
			a.password.Focus()
		}
		return a, nil
	case tea.KeyEnter:
		a.err = ""
		a.status = "Signing in..."
		email, password := a.email.Value(), a.password.Value()
		return a, func() tea.Msg {
			path, err := a.auth.Login(a.ctx, email, password)
			return loginMsg{path: path, err: err}
		}
	}
	var cmd tea.Cmd
	if a.loginFocus == 0 {
		a.email, cmd = a.email.Update(msg)
	} else {
		a.password, cmd = a.password.Update(msg)
	}
	return a, cmd
}

func (a *App) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	a.status = ""
	if msg.err != nil {
		a.err = client.DetailOr(msg.err, "Login failed.")
		return a, nil
	}
	if msg.path != client.PathAdminDashboard {
		a.err = "This console is for administrators with a completed profile."
		return a, a.logoutCmd()
	}
	a.err = ""
	a.password.SetValue("")
	a.screen = screenReports
	a.logger.Info("admin signed in", zap.String("email", a.email.Value()))
	return a, a.applyCmd()
}

func (a *App) updateReports(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searching {
		switch msg.Type {
		case tea.KeyEnter:
			a.searching = false
			a.search.Blur()
			a.feed.SetFilters(a.pendingFilters())
			return a, a.applyCmd()
		case tea.KeyEsc:
			a.searching = false
			a.search.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		a.feed.SetFilters(a.pendingFilters())
		return a, cmd
	}

	rows := a.feed.Rows()
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(rows)-1 {
			a.cursor++
		}
	case key.Matches(msg, a.keys.Status):
		a.statusIndex = (a.statusIndex + 1) % len(statusChoices)
		a.feed.SetFilters(a.pendingFilters())
	case key.Matches(msg, a.keys.Tag):
		a.tagIndex = (a.tagIndex + 1) % len(tagChoices)
		a.feed.SetFilters(a.pendingFilters())
	case key.Matches(msg, a.keys.Search):
		a.searching = true
		a.search.Focus()
	case key.Matches(msg, a.keys.Apply):
		return a, a.applyCmd()
	case key.Matches(msg, a.keys.More):
		return a, a.feedCmd(a.feed.LoadMore)
	case key.Matches(msg, a.keys.Retry):
		return a, a.feedCmd(a.feed.Retry)
	case key.Matches(msg, a.keys.Propose):
		if row, ok := a.selected(rows); ok {
			_, shown := a.mod.State(row.ID)
			if err := a.mod.Select(row.ID, nextStatus(shown)); err != nil {
				a.err = client.DetailOr(err, err.Error())
			}
		}
	case key.Matches(msg, a.keys.Save):
		if row, ok := a.selected(rows); ok && a.mod.CanSave(row.ID) {
			id := row.ID
			return a, func() tea.Msg {
				return saveMsg{id: id, err: a.mod.Save(a.ctx, id)}
			}
		}
	case key.Matches(msg, a.keys.Advice):
		if row, ok := a.selected(rows); ok {
			a.status = "Fetching suggestion..."
			return a, func() tea.Msg {
				text, err := a.advisor.Fetch(a.ctx, row)
				return adviceMsg{report: row, text: text, err: err}
			}
		}
	case key.Matches(msg, a.keys.Dashboard):
		return a, func() tea.Msg {
			stats, err := a.backend.DashboardStats(a.ctx)
			return statsMsg{stats: stats, err: err}
		}
	case key.Matches(msg, a.keys.Logout):
		return a, a.logoutCmd()
	}
	return a, nil
}

func (a *App) handleFeed(msg feedMsg) {
	switch {
	case msg.err == nil:
		a.err = ""
	case errors.Is(msg.err, client.ErrStaleResponse):
		return
	case errors.Is(msg.err, client.ErrNoMorePages):
		a.status = "No more reports."
	case errors.Is(msg.err, client.ErrFetchInFlight):
		a.status = "Still loading..."
	case errors.Is(msg.err, client.ErrHalted):
		a.err = "Loading stopped after an error. Press r to retry."
	case errors.Is(msg.err, client.ErrUnauthenticated):
		a.screen = screenLogin
		a.err = client.DetailOr(msg.err, "Please log in.")
	default:
		a.err = client.DetailOr(msg.err, "Failed to load reports.")
	}
	if n := len(a.feed.Rows()); a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

func (a *App) handleAdvice(msg adviceMsg) *App {
	if msg.err != nil {
		if errors.Is(msg.err, client.ErrFetchInFlight) {
			a.status = "Suggestion already loading."
			return a
		}
		a.takeNotice()
		return a
	}
	a.status = ""
	a.adviceFor = msg.report.ID
	a.advice.SetContent(RenderMarkdown(msg.text, max(20, a.advice.Width-2)))
	a.advice.GotoTop()
	a.screen = screenAdvice
	return a
}

func (a *App) takeNotice() {
	notices := a.notices.Drain()
	if len(notices) == 0 {
		return
	}
	last := notices[len(notices)-1]
	if last.Level == client.NoticeError {
		a.err = last.Message
		a.status = ""
		return
	}
	a.err = ""
	a.status = last.Message
}

func (a *App) applyCmd() tea.Cmd {
	a.cursor = 0
	return a.feedCmd(a.feed.Apply)
}

func (a *App) feedCmd(fetch func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return feedMsg{err: fetch(a.ctx)}
	}
}

func (a *App) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		return logoutMsg{err: a.auth.Logout(a.ctx)}
	}
}

func (a *App) pendingFilters() client.Filters {
	return client.Filters{
		Search: a.search.Value(),
		Status: statusChoices[a.statusIndex],
		Tag:    tagChoices[a.tagIndex],
	}
}

func (a *App) selected(rows []models.Report) (models.Report, bool) {
	if a.cursor < 0 || a.cursor >= len(rows) {
		return models.Report{}, false
	}
	return rows[a.cursor], true
}

// nextStatus cycles through the lifecycle, wrapping after resolved.
func nextStatus(s models.ReportStatus) models.ReportStatus {
	if next, ok := s.Next(); ok {
		return next
	}
	return models.StatusSubmitted
}

func describeFilters(f client.Filters) string {
	status, tag := "all", "all"
	if f.Status != "" {
		status = f.Status.Label()
	}
	if f.Tag != "" {
		tag = f.Tag.String()
	}
	text := fmt.Sprintf("status: %s  tag: %s", status, tag)
	if f.Search != "" {
		text += fmt.Sprintf("  search: %q", f.Search)
	}
	return text
}
