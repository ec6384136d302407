package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/scgen/internal/model"
)

// textField is one free-text form field, backed by either a single-line
// input or a multi-line area.
type textField struct {
	label    string
	required bool
	multi    bool
	input    textinput.Model
	area     textarea.Model
	get      func(model.FormInput) string
	set      func(*model.FormInput, string)
}

func newTextField(label, placeholder string, required, multi bool,
	get func(model.FormInput) string, set func(*model.FormInput, string)) textField {
	f := textField{label: label, required: required, multi: multi, get: get, set: set}
	if multi {
		f.area = textarea.New()
		f.area.Placeholder = placeholder
		f.area.ShowLineNumbers = false
		f.area.SetHeight(3)
	} else {
		f.input = textinput.New()
		f.input.Placeholder = placeholder
		f.input.Prompt = ""
	}
	return f
}

func (f *textField) value() string {
	if f.multi {
		return f.area.Value()
	}
	return f.input.Value()
}

func (f *textField) setValue(v string) {
	if f.multi {
		f.area.SetValue(v)
		return
	}
	f.input.SetValue(v)
}

func (f *textField) focus() tea.Cmd {
	if f.multi {
		return f.area.Focus()
	}
	return f.input.Focus()
}

func (f *textField) blur() {
	if f.multi {
		f.area.Blur()
		return
	}
	f.input.Blur()
}

func (f *textField) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.multi {
		f.area, cmd = f.area.Update(msg)
	} else {
		f.input, cmd = f.input.Update(msg)
	}
	return cmd
}

func (f *textField) setWidth(w int) {
	if f.multi {
		f.area.SetWidth(w)
		return
	}
	f.input.Width = w
}

func (f *textField) view() string {
	if f.multi {
		return f.area.View()
	}
	return f.input.View()
}

// newTextFields returns the free-text fields in display order.
func newTextFields() []textField {
	return []textField{
		newTextField("Selection criteria", "e.g. Demonstrated ability to work in a team", true, true,
			func(f model.FormInput) string { return f.CriteriaQuestion },
			func(f *model.FormInput, v string) { f.CriteriaQuestion = v }),
		newTextField("Job title", "e.g. Policy Analyst", true, false,
			func(f model.FormInput) string { return f.JobTitle },
			func(f *model.FormInput, v string) { f.JobTitle = v }),
		newTextField("Key skills", "comma separated", false, false,
			func(f model.FormInput) string { return f.Skills },
			func(f *model.FormInput, v string) { f.Skills = v }),
		newTextField("Achievements", "outcomes you are proud of", false, true,
			func(f model.FormInput) string { return f.Achievements },
			func(f *model.FormInput, v string) { f.Achievements = v }),
		newTextField("Education", "degrees, certifications", false, false,
			func(f model.FormInput) string { return f.Education },
			func(f *model.FormInput, v string) { f.Education = v }),
		newTextField("Current employer", "", false, false,
			func(f model.FormInput) string { return f.CurrentEmployer },
			func(f *model.FormInput, v string) { f.CurrentEmployer = v }),
		newTextField("Previous employer", "", false, false,
			func(f model.FormInput) string { return f.PreviousEmployer },
			func(f *model.FormInput, v string) { f.PreviousEmployer = v }),
		newTextField("First name", "", false, false,
			func(f model.FormInput) string { return f.CandidateName },
			func(f *model.FormInput, v string) { f.CandidateName = v }),
		newTextField("Strengths", "what sets you apart", false, false,
			func(f model.FormInput) string { return f.CandidateStrengths },
			func(f *model.FormInput, v string) { f.CandidateStrengths = v }),
	}
}

// Controls that follow the text fields in focus order.
const (
	controlExperience = iota
	controlTone
	controlSTAR
	controlHumanize
	numControls
)

func cycle[T comparable](options []T, current T, delta int) T {
	idx := 0
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	n := len(options)
	return options[((idx+delta)%n+n)%n]
}
