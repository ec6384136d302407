package tui

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/scgen/internal/model"
	"github.com/amishk599/scgen/internal/workflow"
)

type fakeGenerator struct {
	replies []string
	err     error
	calls   int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m formModel, msg tea.Msg) (formModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	fm, ok := next.(formModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return fm, cmd
}

// resultMsgs runs cmd (flattening batches) and returns the generate and
// proofread results it produced.
func resultMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	var out []tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, resultMsgs(c)...)
		}
	case generatedMsg, proofreadMsg:
		out = append(out, msg)
	}
	return out
}

// deliver runs cmd and feeds its results back into the model.
func deliver(t *testing.T, m formModel, cmd tea.Cmd) formModel {
	t.Helper()
	for _, msg := range resultMsgs(cmd) {
		m, _ = send(t, m, msg)
	}
	return m
}

func filledModel(t *testing.T, g *fakeGenerator) formModel {
	t.Helper()
	m := newFormModel(Options{Generator: g, ExportDir: t.TempDir(), Clipboard: &bytes.Buffer{}})
	m, _ = send(t, m, typeText("Teamwork"))
	m, _ = send(t, m, key(tea.KeyTab))
	m, _ = send(t, m, typeText("Analyst"))
	return m
}

func TestTyping_UpdatesSessionForm(t *testing.T) {
	m := filledModel(t, &fakeGenerator{})

	form := m.session.Form()
	if form.CriteriaQuestion != "Teamwork" || form.JobTitle != "Analyst" {
		t.Errorf("form = %+v", form)
	}
	if !m.session.CanGenerate() {
		t.Error("CanGenerate = false after filling required fields")
	}
}

func TestGenerate_DisabledWithEmptyRequiredFields(t *testing.T) {
	g := &fakeGenerator{replies: []string{"x"}}
	m := newFormModel(Options{Generator: g})

	m, cmd := send(t, m, key(tea.KeyCtrlG))
	if cmd != nil {
		t.Error("expected no command with empty required fields")
	}
	if m.session.State() != workflow.StateIdle {
		t.Errorf("State = %v, want idle", m.session.State())
	}
	if g.calls != 0 {
		t.Errorf("generator calls = %d, want 0", g.calls)
	}
}

func TestGenerate_RoundTrip(t *testing.T) {
	g := &fakeGenerator{replies: []string{"Hello world"}}
	m := filledModel(t, g)

	m, cmd := send(t, m, key(tea.KeyCtrlG))
	if m.session.State() != workflow.StateGenerating {
		t.Fatalf("State = %v, want generating", m.session.State())
	}
	if !strings.Contains(m.View(), "Generating...") {
		t.Error("expected loading indicator while generating")
	}
	if _, again := send(t, m, key(tea.KeyCtrlG)); again != nil {
		t.Error("second ctrl+g started another call while busy")
	}

	m = deliver(t, m, cmd)
	if g.calls != 1 {
		t.Errorf("generator calls = %d, want 1", g.calls)
	}
	if m.session.Generated() != "Hello world" {
		t.Errorf("Generated = %q", m.session.Generated())
	}
	view := m.View()
	if !strings.Contains(view, "Hello world") {
		t.Error("generated text not shown")
	}
	if !strings.Contains(view, "Words: 2 | Characters: 11") {
		t.Error("counts not shown")
	}
}

func TestGenerate_ErrorVisible(t *testing.T) {
	g := &fakeGenerator{err: &model.APIError{StatusCode: 500, Message: "boom"}}
	m := filledModel(t, g)

	m, cmd := send(t, m, key(tea.KeyCtrlG))
	m = deliver(t, m, cmd)

	if m.session.Err() != "boom" {
		t.Errorf("Err = %q, want boom", m.session.Err())
	}
	if !strings.Contains(m.View(), "boom") {
		t.Error("error not rendered")
	}
}

func TestProofread_DisabledBeforeGenerate(t *testing.T) {
	g := &fakeGenerator{replies: []string{"x"}}
	m := filledModel(t, g)

	_, cmd := send(t, m, key(tea.KeyCtrlP))
	if cmd != nil {
		t.Error("expected no command before any generated text")
	}
	if g.calls != 0 {
		t.Errorf("generator calls = %d, want 0", g.calls)
	}
}

func TestProofread_SwitchesToProofreadTab(t *testing.T) {
	g := &fakeGenerator{replies: []string{"draft", "polished"}}
	m := filledModel(t, g)

	m, cmd := send(t, m, key(tea.KeyCtrlG))
	m = deliver(t, m, cmd)
	m, cmd = send(t, m, key(tea.KeyCtrlP))
	if m.session.State() != workflow.StateProofreading {
		t.Fatalf("State = %v, want proofreading", m.session.State())
	}
	m = deliver(t, m, cmd)

	if m.tab != tabProofread {
		t.Error("expected proofread tab to be active")
	}
	if m.activeText() != "polished" || m.session.Generated() != "draft" {
		t.Errorf("active = %q, generated = %q", m.activeText(), m.session.Generated())
	}

	m, _ = send(t, m, key(tea.KeyCtrlT))
	if m.activeText() != "draft" {
		t.Errorf("after ctrl+t active = %q, want draft", m.activeText())
	}
}

func TestReset_DropsInFlightResult(t *testing.T) {
	g := &fakeGenerator{replies: []string{"late"}}
	m := filledModel(t, g)

	m, cmd := send(t, m, key(tea.KeyCtrlG))
	m, _ = send(t, m, key(tea.KeyCtrlR))
	m = deliver(t, m, cmd)

	if m.session.Generated() != "" {
		t.Errorf("Generated = %q, want stale result dropped", m.session.Generated())
	}
	if m.session.Form() != model.DefaultFormInput() {
		t.Errorf("form = %+v, want defaults", m.session.Form())
	}
	if m.fields[0].value() != "" || m.fields[1].value() != "" {
		t.Error("text components not cleared")
	}
	if m.focus != 0 {
		t.Errorf("focus = %d, want 0", m.focus)
	}
}

func TestControls_CycleAndToggle(t *testing.T) {
	m := newFormModel(Options{})

	for range len(m.fields) {
		m, _ = send(t, m, key(tea.KeyTab))
	}
	m, _ = send(t, m, key(tea.KeyRight))
	if got := m.session.Form().Experience; got != model.Experience3to5 {
		t.Errorf("Experience = %q, want 3-5", got)
	}
	m, _ = send(t, m, key(tea.KeyLeft))
	m, _ = send(t, m, key(tea.KeyLeft))
	if got := m.session.Form().Experience; got != model.Experience10Plus {
		t.Errorf("Experience = %q, want wrap to 10+", got)
	}

	m, _ = send(t, m, key(tea.KeyTab))
	m, _ = send(t, m, key(tea.KeyRight))
	if got := m.session.Form().Tone; got != model.ToneConfident {
		t.Errorf("Tone = %q, want confident", got)
	}

	m, _ = send(t, m, key(tea.KeyTab))
	m, _ = send(t, m, key(tea.KeySpace))
	if !m.session.Form().UseSTAR {
		t.Error("UseSTAR not toggled")
	}

	m, _ = send(t, m, key(tea.KeyTab))
	m, _ = send(t, m, key(tea.KeyTab))
	if m.focus != 0 {
		t.Errorf("focus = %d, want wrap to 0", m.focus)
	}
	m, _ = send(t, m, key(tea.KeyShiftTab))
	m, _ = send(t, m, key(tea.KeyEnter))
	if !m.session.Form().Humanize {
		t.Error("Humanize not toggled")
	}
}

func TestExportAndCopy(t *testing.T) {
	g := &fakeGenerator{replies: []string{"My response."}}
	m := filledModel(t, g)
	clip := &bytes.Buffer{}
	m.clipboard = clip

	m, cmd := send(t, m, key(tea.KeyCtrlG))
	m = deliver(t, m, cmd)

	m, _ = send(t, m, key(tea.KeyCtrlS))
	data, err := os.ReadFile(filepath.Join(m.exportDir, "selection_criteria_response.docx"))
	if err != nil {
		t.Fatalf("docx not written: %v", err)
	}
	if string(data) != "My response." {
		t.Errorf("docx content = %q", data)
	}
	if !strings.HasPrefix(m.notice, "saved ") {
		t.Errorf("notice = %q", m.notice)
	}

	m, _ = send(t, m, key(tea.KeyCtrlD))
	if _, err := os.Stat(filepath.Join(m.exportDir, "selection_criteria_response.pdf")); err != nil {
		t.Errorf("pdf not written: %v", err)
	}

	m, _ = send(t, m, key(tea.KeyCtrlY))
	if !strings.Contains(clip.String(), base64.StdEncoding.EncodeToString([]byte("My response."))) {
		t.Errorf("clipboard sequence = %q", clip.String())
	}
	if m.notice != "copied to clipboard" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestExport_NothingToExport(t *testing.T) {
	m := newFormModel(Options{ExportDir: t.TempDir()})

	m, _ = send(t, m, key(tea.KeyCtrlS))
	if !strings.HasPrefix(m.notice, "export failed") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := newFormModel(Options{})
		_, cmd := send(t, m, key(k))
		if cmd == nil {
			t.Fatalf("%v: no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: expected tea.QuitMsg", k)
		}
	}
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("one two three\n\nfour", 7)
	want := "one two\nthree\n\nfour"
	if got != want {
		t.Errorf("wordWrap = %q, want %q", got, want)
	}
}
