// Package tui is the interactive selection criteria form.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/scgen/internal/export"
	"github.com/amishk599/scgen/internal/model"
	"github.com/amishk599/scgen/internal/workflow"
)

type resultTab int

const (
	tabPreview resultTab = iota
	tabProofread
)

// generatedMsg is sent when an async generate call completes.
type generatedMsg struct {
	ticket  workflow.Ticket
	content string
	err     error
}

// proofreadMsg is sent when an async proofread call completes.
type proofreadMsg struct {
	ticket  workflow.Ticket
	content string
	err     error
}

// Options configures the form.
type Options struct {
	Generator workflow.Generator
	// Session may be nil; a fresh one is created.
	Session   *workflow.Session
	ExportDir string
	// Timeout bounds each network call. Zero means no limit.
	Timeout time.Duration
	// Clipboard receives the OSC52 copy sequence. Defaults to os.Stderr.
	Clipboard io.Writer
	Logger    *slog.Logger
}

type formModel struct {
	session   *workflow.Session
	generator workflow.Generator
	exportDir string
	timeout   time.Duration
	clipboard io.Writer
	logger    *slog.Logger

	fields  []textField
	focus   int
	spinner spinner.Model
	result  viewport.Model
	tab     resultTab
	notice  string
	width   int
	height  int
}

func newFormModel(opts Options) formModel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	session := opts.Session
	if session == nil {
		session = workflow.NewSession(logger)
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = os.Stderr
	}

	m := formModel{
		session:   session,
		generator: opts.Generator,
		exportDir: opts.ExportDir,
		timeout:   opts.Timeout,
		clipboard: clip,
		logger:    logger,
		fields:    newTextFields(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		result:    viewport.New(80, 8),
	}
	m.loadForm()
	m.fields[0].focus()
	return m
}

func (m formModel) Init() tea.Cmd {
	return nil
}

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case generatedMsg:
		m.session.FinishGenerate(msg.ticket, msg.content, msg.err)
		m.tab = tabPreview
		m.refreshResult()
		return m, nil

	case proofreadMsg:
		m.session.FinishProofread(msg.ticket, msg.content, msg.err)
		if msg.err == nil && m.session.ProofreadText() != "" {
			m.tab = tabProofread
		}
		m.refreshResult()
		return m, nil

	case spinner.TickMsg:
		if !m.session.State().Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m, nil
}

func (m formModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m, m.moveFocus(1)
	case "shift+tab":
		return m, m.moveFocus(-1)
	case "ctrl+g":
		return m.startGenerate()
	case "ctrl+p":
		return m.startProofread()
	case "ctrl+r":
		m.reset()
		return m, m.fields[0].focus()
	case "ctrl+t":
		if m.tab == tabPreview {
			m.tab = tabProofread
		} else {
			m.tab = tabPreview
		}
		m.refreshResult()
		return m, nil
	case "ctrl+s":
		m.exportActive(export.FormatDOCX)
		return m, nil
	case "ctrl+d":
		m.exportActive(export.FormatPDF)
		return m, nil
	case "ctrl+y":
		m.copyActive()
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.result, cmd = m.result.Update(msg)
		return m, cmd
	}

	if m.focus < len(m.fields) {
		f := &m.fields[m.focus]
		cmd := f.update(msg)
		m.session.UpdateForm(func(in *model.FormInput) { f.set(in, f.value()) })
		return m, cmd
	}
	m.updateControl(msg)
	return m, nil
}

func (m *formModel) updateControl(msg tea.KeyMsg) {
	delta := 0
	switch msg.String() {
	case "right", "l", " ", "enter":
		delta = 1
	case "left", "h":
		delta = -1
	default:
		return
	}

	m.session.UpdateForm(func(in *model.FormInput) {
		switch m.focus - len(m.fields) {
		case controlExperience:
			in.Experience = cycle(model.Experiences, in.Experience, delta)
		case controlTone:
			in.Tone = cycle(model.Tones, in.Tone, delta)
		case controlSTAR:
			in.UseSTAR = !in.UseSTAR
		case controlHumanize:
			in.Humanize = !in.Humanize
		}
	})
}

func (m *formModel) moveFocus(delta int) tea.Cmd {
	total := len(m.fields) + numControls
	if m.focus < len(m.fields) {
		m.fields[m.focus].blur()
	}
	m.focus = ((m.focus+delta)%total + total) % total
	if m.focus < len(m.fields) {
		return m.fields[m.focus].focus()
	}
	return nil
}

func (m formModel) startGenerate() (tea.Model, tea.Cmd) {
	if m.generator == nil || !m.session.CanGenerate() {
		return m, nil
	}
	ticket, prompt, err := m.session.BeginGenerate()
	if err != nil {
		m.logger.Debug("generate not started", "error", err)
		return m, nil
	}
	m.notice = ""
	m.tab = tabPreview
	m.refreshResult()

	g, timeout := m.generator, m.timeout
	call := func() tea.Msg {
		content, err := callGenerator(g, timeout, prompt)
		return generatedMsg{ticket: ticket, content: content, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, call)
}

func (m formModel) startProofread() (tea.Model, tea.Cmd) {
	if m.generator == nil {
		return m, nil
	}
	ticket, prompt, ok := m.session.BeginProofread()
	if !ok {
		m.refreshResult()
		return m, nil
	}
	m.notice = ""
	m.refreshResult()

	g, timeout := m.generator, m.timeout
	call := func() tea.Msg {
		content, err := callGenerator(g, timeout, prompt)
		return proofreadMsg{ticket: ticket, content: content, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, call)
}

func callGenerator(g workflow.Generator, timeout time.Duration, prompt string) (string, error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return g.Generate(ctx, prompt)
}

func (m *formModel) reset() {
	m.session.Reset()
	if m.focus < len(m.fields) {
		m.fields[m.focus].blur()
	}
	m.focus = 0
	m.tab = tabPreview
	m.notice = ""
	m.loadForm()
	m.refreshResult()
}

// loadForm copies the session's form into the text components.
func (m *formModel) loadForm() {
	form := m.session.Form()
	for i := range m.fields {
		m.fields[i].setValue(m.fields[i].get(form))
	}
}

func (m formModel) activeText() string {
	if m.tab == tabProofread {
		return m.session.ProofreadText()
	}
	return m.session.Generated()
}

func (m *formModel) exportActive(f export.Format) {
	path, err := export.Write(m.exportDir, m.activeText(), f)
	if err != nil {
		m.notice = fmt.Sprintf("export failed: %v", err)
		return
	}
	m.notice = "saved " + path
}

func (m *formModel) copyActive() {
	text := m.activeText()
	if text == "" {
		m.notice = "nothing to copy"
		return
	}
	if _, err := osc52.New(text).WriteTo(m.clipboard); err != nil {
		m.notice = fmt.Sprintf("copy failed: %v", err)
		return
	}
	m.notice = "copied to clipboard"
}

func (m *formModel) recalcLayout() {
	inputWidth := max(m.width-labelStyle.GetWidth()-6, 20)
	for i := range m.fields {
		m.fields[i].setWidth(inputWidth)
	}
	m.result.Width = max(m.width-4, 20)
	m.result.Height = max(m.height-m.formHeight()-8, 4)
	m.refreshResult()
}

func (m *formModel) refreshResult() {
	m.result.SetContent(wordWrap(m.activeText(), max(m.result.Width-2, 20)))
	m.result.GotoTop()
}

// Run launches the form full screen and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(newFormModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
