// Package prompt renders the generate and proofread prompts sent to the
// generation endpoint.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/amishk599/scgen/internal/model"
)

// NotSpecified replaces any blank optional field.
const NotSpecified = "Not specified"

const (
	starInstruction     = "Use the STAR (Situation, Task, Action, Result) format."
	standardInstruction = "Use a standard paragraph format with clear examples."

	humanizeInstruction     = "Make the response sound natural and conversational, as if written by a human. Vary sentence structure and use a more personal tone."
	professionalInstruction = "Keep the response professional and structured."
)

//go:embed prompts/generate.md
var generatePromptRaw string

//go:embed prompts/proofread.md
var proofreadPromptRaw string

// Parsed once at package init; reused on every render.
var (
	generateTemplate  = template.Must(template.New("generate").Parse(generatePromptRaw))
	proofreadTemplate = template.Must(template.New("proofread").Parse(proofreadPromptRaw))
)

// generateView is the template data for generate.md. Every value is final
// text; placeholder substitution happens before rendering.
type generateView struct {
	CriteriaQuestion   string
	JobTitle           string
	Experience         string
	Skills             string
	Achievements       string
	Education          string
	CurrentEmployer    string
	PreviousEmployer   string
	CandidateName      string
	CandidateStrengths string
	FormatInstruction  string
	Tone               string
	StyleInstruction   string
}

// Generate renders the selection-criteria prompt for f. The output depends
// only on f.
func Generate(f model.FormInput) (string, error) {
	view := generateView{
		CriteriaQuestion:   f.CriteriaQuestion,
		JobTitle:           f.JobTitle,
		Experience:         orNotSpecified(string(f.Experience)),
		Skills:             orNotSpecified(f.Skills),
		Achievements:       orNotSpecified(f.Achievements),
		Education:          orNotSpecified(f.Education),
		CurrentEmployer:    orNotSpecified(f.CurrentEmployer),
		PreviousEmployer:   orNotSpecified(f.PreviousEmployer),
		CandidateName:      orNotSpecified(f.CandidateName),
		CandidateStrengths: orNotSpecified(f.CandidateStrengths),
		FormatInstruction:  FormatInstruction(f.UseSTAR),
		Tone:               orNotSpecified(string(f.Tone)),
		StyleInstruction:   StyleInstruction(f.Humanize),
	}

	var buf bytes.Buffer
	if err := generateTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render generate prompt: %w", err)
	}
	return buf.String(), nil
}

// Proofread renders the proofreading prompt around text, which is embedded
// verbatim.
func Proofread(text string) (string, error) {
	var buf bytes.Buffer
	if err := proofreadTemplate.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", fmt.Errorf("render proofread prompt: %w", err)
	}
	return buf.String(), nil
}

// FormatInstruction returns the clause selected by the STAR flag.
func FormatInstruction(useSTAR bool) string {
	if useSTAR {
		return starInstruction
	}
	return standardInstruction
}

// StyleInstruction returns the clause selected by the humanize flag.
func StyleInstruction(humanize bool) string {
	if humanize {
		return humanizeInstruction
	}
	return professionalInstruction
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return NotSpecified
	}
	return v
}
