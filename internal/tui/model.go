// Package tui is the terminal chat front end. It drives one orchestrator
// through the spiral and shows the phase, Ba and spiral count alongside the
// conversation.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
)

const (
	sparklineWidth  = 30
	sparklineHeight = 3
	historySize     = 30

	// rows taken by everything except the chat log
	chromeHeight = 15
	chromeWidth  = 8
)

type role int

const (
	roleUser role = iota
	roleAssistant
	roleSystem
	roleError
)

type entry struct {
	role role
	text string
}

// Model is the bubbletea chat model.
//
// The orchestrator is only touched from Update while no command is in
// flight, and from the in-flight command otherwise. busy guards the handoff.
type Model struct {
	orch      *orchestrator.Orchestrator
	ctx       context.Context
	timeout   time.Duration
	exportDir string
	now       func() time.Time

	status  orchestrator.Status
	entries []entry
	latency []float64
	pending string
	notice  string
	started time.Time
	busy    bool
	err     error

	quitting bool

	input    textinput.Model
	viewport viewport.Model
	progress progress.Model
	spinner  spinner.Model
}

// Option configures a Model.
type Option func(*Model)

// WithExportDir sets where /export writes reports. Defaults to the working
// directory.
func WithExportDir(dir string) Option {
	return func(m *Model) {
		m.exportDir = dir
	}
}

// WithRequestTimeout bounds each generator round-trip. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Model) {
		m.timeout = d
	}
}

// WithClock overrides time.Now for export names and the elapsed counter.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// Lipgloss styles (k9s-inspired color scheme)
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	sparklineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51"))
)

// NewModel creates a chat model over o. ctx bounds every generator call made
// on the user's behalf.
func NewModel(ctx context.Context, o *orchestrator.Orchestrator, opts ...Option) Model {
	input := textinput.New()
	input.Placeholder = "메시지를 입력하세요 (/help)"
	input.Prompt = "› "
	input.CharLimit = 2000
	input.Width = 72
	input.Focus()

	m := Model{
		orch:      o,
		ctx:       ctx,
		exportDir: ".",
		now:       time.Now,
		status:    o.Status(),
		latency:   make([]float64, 0, historySize),
		busy:      true,
		input:     input,
		viewport:  viewport.New(80, 20),
		progress: progress.New(
			progress.WithGradient("#00ffff", "#ff00ff"),
			progress.WithWidth(40),
		),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.started = m.now()
	return m
}

// Message types
type replyMsg struct {
	result  orchestrator.SubmitResult
	elapsed time.Duration
	err     error
}

type openingMsg struct {
	text      string
	status    orchestrator.Status
	generated bool
	elapsed   time.Duration
	err       error
}

// Init fetches the opening message of the current phase.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.opening())
}

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(m.ctx, m.timeout)
	}
	return context.WithCancel(m.ctx)
}

// opening asks the orchestrator for the current phase's first message.
func (m Model) opening() tea.Cmd {
	o := m.orch
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		phase := o.Phase()
		start := time.Now()
		text, err := o.InitialMessage(ctx)
		return openingMsg{
			text:      text,
			status:    o.Status(),
			generated: phase == orchestrator.PhaseExternalization,
			elapsed:   time.Since(start),
			err:       err,
		}
	}
}

// submit sends one message to the orchestrator.
func (m Model) submit(text string) tea.Cmd {
	o := m.orch
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		start := time.Now()
		res, err := o.Submit(ctx, text)
		return replyMsg{result: res, elapsed: time.Since(start), err: err}
	}
}

// advance finishes the current phase.
func (m Model) advance() tea.Cmd {
	o := m.orch
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		start := time.Now()
		res, err := o.ForceAdvance(ctx)
		return replyMsg{result: res, elapsed: time.Since(start), err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleEnter()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case openingMsg:
		return m.handleOpening(msg)

	case replyMsg:
		return m.handleReply(msg)

	case exportedMsg:
		if msg.err != nil {
			m.appendEntry(roleError, fmt.Sprintf("리포트를 저장하지 못했습니다: %v", msg.err))
		} else {
			m.notice = fmt.Sprintf("리포트를 저장했습니다: %s", msg.path)
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	cmd := parseCommand(m.input.Value())
	m.input.Reset()
	m.notice = ""

	switch cmd.kind {
	case cmdQuit:
		m.quitting = true
		return m, tea.Quit

	case cmdHelp:
		m.appendEntry(roleSystem, helpText)

	case cmdUnknown:
		m.notice = fmt.Sprintf("알 수 없는 명령어입니다: /%s (/help 참고)", cmd.arg)

	case cmdReset:
		m.orch.Reset()
		return m.restarted()

	case cmdRestart:
		m.orch.Restart()
		return m.restarted()

	case cmdExport:
		path, f, err := exportTarget(cmd.arg, m.exportDir, m.status.Spiral, m.now())
		if err != nil {
			m.notice = err.Error()
			break
		}
		return m, exportReport(m.orch, path, f, m.now())

	case cmdAdvance:
		if m.status.Phase == orchestrator.PhaseComplete {
			m.notice = "이미 나선이 완료되었습니다. \"처음부터\"로 다음 회차를 시작하세요."
			break
		}
		m.pending = ""
		return m.startBusy(m.advance())

	case cmdSubmit:
		blank := strings.TrimSpace(cmd.text) == ""
		if blank && conversational(m.status.Phase) {
			return m, nil
		}
		if !blank {
			m.appendEntry(roleUser, cmd.text)
		}
		m.pending = cmd.text
		m.refresh()
		return m.startBusy(m.submit(cmd.text))
	}

	m.refresh()
	return m, nil
}

// restarted clears the log after Reset or Restart and fetches the welcome.
func (m Model) restarted() (tea.Model, tea.Cmd) {
	m.status = m.orch.Status()
	m.entries = nil
	m.pending = ""
	m.started = m.now()
	m.notice = fmt.Sprintf("%s를 시작합니다.", FormatSpiral(m.status.Spiral))
	m.appendEntry(roleSystem, phaseBanner(m.status))
	m.refresh()
	return m.startBusy(m.opening())
}

func (m Model) startBusy(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	m.err = nil
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) handleOpening(msg openingMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.status = msg.status
	if msg.err != nil {
		m.err = msg.err
		m.appendEntry(roleError, fmt.Sprintf("첫 질문을 가져오지 못했습니다: %v", msg.err))
		m.refresh()
		return m, nil
	}
	if msg.generated {
		m.recordLatency(msg.elapsed)
	}
	if msg.text != "" {
		m.appendEntry(roleAssistant, msg.text)
	}
	m.refresh()
	return m, nil
}

func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		switch {
		case errors.Is(msg.err, orchestrator.ErrPhaseComplete):
			m.notice = "이미 나선이 완료되었습니다. \"처음부터\"로 다음 회차를 시작하세요."
		case errors.Is(msg.err, orchestrator.ErrEmptyMessage):
			m.notice = "메시지를 입력해 주세요."
		default:
			m.err = msg.err
			m.appendEntry(roleError, fmt.Sprintf("응답을 받지 못했습니다: %v", msg.err))
			m.input.SetValue(m.pending)
			m.input.CursorEnd()
		}
		m.refresh()
		return m, nil
	}

	m.pending = ""
	m.recordLatency(msg.elapsed)
	m.appendEntry(roleAssistant, msg.result.Response)
	if msg.result.Degraded {
		m.notice = "일부 항목은 대화 내용이 부족해 기본값으로 채워졌습니다."
	}

	if !msg.result.PhaseChanged {
		m.status = msg.result.Status
		m.refresh()
		return m, nil
	}

	m.status = msg.result.Status
	m.appendEntry(roleSystem, phaseBanner(m.status))
	m.refresh()
	if m.status.Phase == orchestrator.PhaseExternalization {
		return m.startBusy(m.opening())
	}
	return m, nil
}

func conversational(p orchestrator.Phase) bool {
	return p == orchestrator.PhaseSocialization || p == orchestrator.PhaseExternalization
}

func (m *Model) appendEntry(r role, text string) {
	m.entries = append(m.entries, entry{role: r, text: text})
}

// recordLatency appends to the latency history, maintaining max size
func (m *Model) recordLatency(d time.Duration) {
	m.latency = append(m.latency, d.Seconds())
	if len(m.latency) > historySize {
		m.latency = m.latency[1:]
	}
}

func (m *Model) resize(width, height int) {
	w := max(20, width-chromeWidth)
	h := max(5, height-chromeHeight)
	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = max(10, w-4)
	m.progress.Width = min(40, max(10, w-24))
	m.refresh()
}

// refresh re-renders the chat log into the viewport and scrolls to the end.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

func (m Model) renderLog() string {
	body := lipgloss.NewStyle().Width(m.viewport.Width)
	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch e.role {
		case roleUser:
			b.WriteString(userStyle.Render("나") + "\n" + body.Render(e.text))
		case roleAssistant:
			b.WriteString(assistantStyle.Render("Tacit") + "\n" + body.Render(e.text))
		case roleSystem:
			b.WriteString(dimStyle.Width(m.viewport.Width).Render(e.text))
		case roleError:
			b.WriteString(errorStyle.Width(m.viewport.Width).Render("✗ " + e.text))
		}
	}
	return b.String()
}

// createSparkline creates a sparkline chart from historical data
func createSparkline(data []float64) string {
	if len(data) == 0 {
		return dimStyle.Render(fmt.Sprintf("%*s", sparklineWidth, "no data"))
	}

	spark := sparkline.New(sparklineWidth, sparklineHeight)
	for _, v := range data {
		spark.Push(v)
	}
	return sparklineStyle.Render(spark.View())
}

// View renders the chat
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	header := headerStyle.Render(" tacit ")
	content += header + "  " +
		valueStyle.Render(m.status.PhaseName) +
		dimStyle.Render(" · ") + labelStyle.Render(m.status.BaDescription) +
		dimStyle.Render(" · ") + valueStyle.Render(FormatSpiral(m.status.Spiral)) + "\n"

	content += labelStyle.Render("진행 ") +
		m.progress.ViewAs(m.status.Progress) +
		" " + dimStyle.Render(FormatPhaseStep(m.status)) + "\n\n"

	content += m.viewport.View() + "\n\n"

	last := "-"
	if n := len(m.latency); n > 0 {
		last = FormatLatency(m.latency[n-1])
	}
	stats := labelStyle.Render("응답 ") + valueStyle.Render(last) + "\n" +
		labelStyle.Render("경과 ") + valueStyle.Render(FormatDuration(m.now().Sub(m.started)))
	content += lipgloss.JoinHorizontal(lipgloss.Top, stats, "   ", createSparkline(m.latency)) + "\n"

	switch {
	case m.busy:
		content += m.spinner.View() + dimStyle.Render(" 생각하는 중…") + "\n"
	case m.err != nil:
		content += errorStyle.Render(truncate(m.err.Error(), m.viewport.Width)) + "\n"
	case m.notice != "":
		content += warningStyle.Render(truncate(m.notice, m.viewport.Width)) + "\n"
	default:
		content += "\n"
	}

	content += m.input.View()

	footer := footerKeyStyle.Render("[enter]") + footerStyle.Render(" 전송  ") +
		footerKeyStyle.Render("/advance") + footerStyle.Render(" 다음 단계  ") +
		footerKeyStyle.Render("/export") + footerStyle.Render(" 저장  ") +
		footerKeyStyle.Render("[esc]") + footerStyle.Render(" 종료")
	content += "\n\n" + footer

	return containerStyle.Render(content)
}
