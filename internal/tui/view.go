package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/scgen/internal/model"
	"github.com/amishk599/scgen/internal/workflow"
)

func (m formModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Selection Criteria Writer"))
	b.WriteString("\n\n")
	b.WriteString(m.viewForm())
	b.WriteByte('\n')
	b.WriteString(m.viewActions())
	b.WriteString("\n\n")
	b.WriteString(m.viewResult())
	b.WriteByte('\n')
	b.WriteString(m.viewStatus())

	return b.String()
}

func (m formModel) viewForm() string {
	form := m.session.Form()
	var rows []string

	for i := range m.fields {
		f := &m.fields[i]
		label := f.label
		if f.required {
			label += requiredMarkStyle.Render(" *")
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, m.renderLabel(i, label), f.view()))
	}

	base := len(m.fields)
	rows = append(rows,
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderLabel(base+controlExperience, "Experience (years)"),
			renderChoices(model.Experiences, form.Experience)),
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderLabel(base+controlTone, "Tone"),
			renderChoices(model.Tones, form.Tone)),
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderLabel(base+controlSTAR, "STAR method"),
			renderToggle(form.UseSTAR)),
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderLabel(base+controlHumanize, "Humanize"),
			renderToggle(form.Humanize)),
	)
	return strings.Join(rows, "\n")
}

func (m formModel) renderLabel(idx int, label string) string {
	if idx == m.focus {
		return focusedLabelStyle.Render("> " + label)
	}
	return labelStyle.Render("  " + label)
}

// formHeight is the number of lines viewForm renders.
func (m formModel) formHeight() int {
	h := numControls
	for i := range m.fields {
		if m.fields[i].multi {
			h += m.fields[i].area.Height()
		} else {
			h++
		}
	}
	return h
}

func renderChoices[T ~string](options []T, selected T) string {
	parts := make([]string, len(options))
	for i, o := range options {
		if o == selected {
			parts[i] = selectedChoiceStyle.Render(string(o))
		} else {
			parts[i] = choiceStyle.Render(string(o))
		}
	}
	return strings.Join(parts, " ")
}

func renderToggle(on bool) string {
	if on {
		return selectedChoiceStyle.Render("on")
	}
	return choiceStyle.Render("off")
}

func (m formModel) viewActions() string {
	action := func(label string, enabled bool) string {
		if enabled {
			return enabledActionStyle.Render(label)
		}
		return disabledActionStyle.Render(label)
	}
	actions := []string{
		action("[ctrl+g] Generate", m.generator != nil && m.session.CanGenerate()),
		action("[ctrl+p] Proofread", m.generator != nil && m.session.CanProofread()),
		action("[ctrl+r] Reset", true),
	}

	line := "  " + strings.Join(actions, "   ")
	switch m.session.State() {
	case workflow.StateGenerating:
		line += "   " + m.spinner.View() + " Generating..."
	case workflow.StateProofreading:
		line += "   " + m.spinner.View() + " Proofreading..."
	}
	return line
}

func (m formModel) viewResult() string {
	preview, proofread := inactiveTabStyle, inactiveTabStyle
	if m.tab == tabPreview {
		preview = activeTabStyle
	} else {
		proofread = activeTabStyle
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top,
		preview.Render("Preview"),
		inactiveTabStyle.Render("|"),
		proofread.Render("Proofread"),
	)

	text := m.activeText()
	counts := countStyle.Render(fmt.Sprintf("Words: %d | Characters: %d",
		workflow.WordCount(text), workflow.CharCount(text)))

	body := m.result.View()
	if text == "" {
		body = hintStyle.Render(m.emptyHint())
	}

	var b strings.Builder
	b.WriteString(tabs + "   " + counts + "\n")
	b.WriteString(activeBorderStyle.Width(m.result.Width).Render(body))
	if e := m.session.Err(); e != "" {
		b.WriteString("\n" + errorStyle.Render("⚠ "+e))
	}
	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render(m.notice))
	}
	return b.String()
}

func (m formModel) emptyHint() string {
	if m.tab == tabProofread {
		if m.session.Generated() == "" {
			return "generate a response first, then press ctrl+p to proofread it"
		}
		return "press ctrl+p to proofread the generated response"
	}
	return "fill in the required fields (*) and press ctrl+g to generate"
}

func (m formModel) viewStatus() string {
	text := " tab/shift+tab move  ←/→ change  ctrl+t switch tab  ctrl+s docx  ctrl+d pdf  ctrl+y copy  esc quit"
	return statusBarStyle.Width(m.width).Render(text)
}

// wordWrap wraps each paragraph of text to width, keeping blank lines.
func wordWrap(text string, width int) string {
	paragraphs := strings.Split(text, "\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		words := strings.Fields(p)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if lipgloss.Width(line)+1+lipgloss.Width(w) <= width {
				line += " " + w
			} else {
				out = append(out, line)
				line = w
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
