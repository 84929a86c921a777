package bubbletea

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vedaai/veda"
	"go.uber.org/zap"
)

var _ tea.Model = Model{}

// Layout rows outside the viewport.
const (
	headerHeight = 1
	statusHeight = 1
	inputHeight  = 1
	borderHeight = 2
)

// Model is the Bubble Tea model for the VedaAI TUI.
type Model struct {
	// Input is the query input. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable answer area. Exported for test access.
	Viewport viewport.Model
	// Spinner animates while an answer streams in.
	Spinner spinner.Model

	ctrl     *veda.Controller
	identity veda.Identity
	styles   Styles
	logger   *zap.Logger

	query  *QueryBlock
	answer *AnswerBlock
	failed *ErrorBlock

	notice string
	err    error
	ready  bool
}

type options struct {
	theme    veda.Theme
	renderer veda.Renderer
	logger   *zap.Logger
	idle     time.Duration
}

// Option configures a Model.
type Option func(*options)

// WithTheme sets the color theme. Defaults to veda.DefaultTheme.
func WithTheme(t veda.Theme) Option {
	return func(o *options) { o.theme = t }
}

// WithRenderer sets the answer renderer. Defaults to plain text.
func WithRenderer(r veda.Renderer) Option {
	return func(o *options) { o.renderer = r }
}

// WithLogger sets the logger shared with the controller.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIdleTimeout fails a session that goes quiet for d.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) { o.idle = d }
}

// New creates a TUI Model that streams answers over t for the signed-in
// identity.
func New(t veda.Transport, identity veda.Identity, opts ...Option) Model {
	o := options{
		theme:    veda.DefaultTheme(),
		renderer: veda.PlainRenderer,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	ti := textinput.New()
	ti.Placeholder = "Ask VedaAI anything..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	styles := NewStyles(o.theme)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Accent))

	answer := NewAnswerBlock(o.renderer)
	ctrl := veda.NewController(t,
		veda.WithObserver(answer),
		veda.WithLogger(o.logger),
		veda.WithIdleTimeout(o.idle),
	)

	return Model{
		Input:    ti,
		Spinner:  sp,
		ctrl:     ctrl,
		identity: identity,
		styles:   styles,
		logger:   o.logger,
		answer:   answer,
	}
}

// Streaming reports whether an answer is streaming in.
func (m Model) Streaming() bool {
	s := m.ctrl.Session()
	return s != nil && s.State == veda.StateStreaming
}

// Session returns the current session, or nil before the first query.
func (m Model) Session() *veda.StreamSession { return m.ctrl.Session() }

// Err returns the last error applying a delivery, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case DeliveryMsg:
		return m.handleDelivery(msg)

	case SessionEndedMsg:
		return m, nil

	case spinner.TickMsg:
		if !m.Streaming() {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(headerLine(m.identity.DisplayName(), m.Viewport.Width, m.styles))
	b.WriteString("\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	vpHeight := max(msg.Height-headerHeight-statusHeight-inputHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width
	m.syncView()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.Streaming() {
			return m.cancel(), nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.Streaming() {
			return m.cancel(), nil
		}
		return m, nil

	case tea.KeyEnter:
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)
	}

	// Only non-character keys scroll, so 'j'/'k' still type.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit starts a new session. A session still streaming is superseded.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil
	m.notice = ""
	m.failed = nil
	m.query = NewQueryBlock(text, m.styles)

	_, err := m.ctrl.Submit(context.Background(), text)
	m = m.settle()
	m.syncView()
	if err != nil {
		return m, nil
	}
	return m, tea.Batch(listenForDelivery(m.ctrl.Deliveries()), m.Spinner.Tick)
}

func (m Model) cancel() Model {
	m.ctrl.Cancel()
	m.notice = "Cancelled"
	m.syncView()
	return m
}

func (m Model) handleDelivery(msg DeliveryMsg) (tea.Model, tea.Cmd) {
	if err := m.ctrl.Handle(msg.Delivery); err != nil {
		m.logger.Warn("handle delivery", zap.Error(err))
		m.err = err
	}
	m = m.settle()
	m.syncView()
	if msg.ch == m.ctrl.Deliveries() && m.Streaming() {
		return m, listenForDelivery(msg.ch)
	}
	return m, nil
}

// settle shows the error block once the current session has failed.
func (m Model) settle() Model {
	if s := m.ctrl.Session(); s != nil && s.State == veda.StateErrored && m.failed == nil {
		m.failed = NewErrorBlock(s.ErrorMessage, m.styles)
	}
	return m
}

// syncView replaces the viewport content and pins it to the bottom.
func (m *Model) syncView() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
}

func (m Model) renderContent() string {
	width := m.Viewport.Width
	var parts []string
	if m.query != nil {
		parts = append(parts, m.query.View(width))
	}
	if answer := m.answer.View(width); answer != "" {
		parts = append(parts, answer)
	}
	if m.failed != nil {
		parts = append(parts, m.failed.View(width))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	case m.Streaming() && m.answer.Doc() == "":
		return m.Spinner.View() + " " + m.styles.Muted.Render("Thinking...")
	case m.Streaming():
		return m.Spinner.View() + " " + m.styles.Muted.Render("Esc to stop")
	case m.notice != "":
		return m.styles.Muted.Render(m.notice + ". Enter to send, Ctrl+C to quit")
	}
	return m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
}
