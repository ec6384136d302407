package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Experience is the candidate's years-of-experience bracket.
type Experience string

const (
	Experience1to3   Experience = "1-3"
	Experience3to5   Experience = "3-5"
	Experience5to10  Experience = "5-10"
	Experience10Plus Experience = "10+"
)

// Experiences lists the brackets in display order.
var Experiences = []Experience{Experience1to3, Experience3to5, Experience5to10, Experience10Plus}

// Tone is the requested voice of the response.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneConfident    Tone = "confident"
	ToneEnthusiastic Tone = "enthusiastic"
	ToneFormal       Tone = "formal"
)

// Tones lists the tones in display order.
var Tones = []Tone{ToneProfessional, ToneConfident, ToneEnthusiastic, ToneFormal}

// FormInput is everything the candidate tells us about the application.
// CriteriaQuestion and JobTitle are required; every other free-text field is
// optional and rendered as "Not specified" in the prompt when blank.
type FormInput struct {
	CriteriaQuestion string     `validate:"required_trimmed"`
	JobTitle         string     `validate:"required_trimmed"`
	Experience       Experience `validate:"oneof=1-3 3-5 5-10 10+"`
	Tone             Tone       `validate:"oneof=professional confident enthusiastic formal"`

	Skills             string
	Achievements       string
	Education          string
	CurrentEmployer    string
	PreviousEmployer   string
	CandidateName      string
	CandidateStrengths string

	UseSTAR  bool
	Humanize bool
}

// DefaultFormInput returns the form as it looks before the user types anything.
func DefaultFormInput() FormInput {
	return FormInput{
		Experience: Experience1to3,
		Tone:       ToneProfessional,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		err := validate.RegisterValidation("required_trimmed", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		if err != nil {
			panic(fmt.Sprintf("register required_trimmed: %v", err))
		}
	})
	return validate
}

// Validate checks required and enumerated fields. It returns a *UserInputError
// naming every offending field, or nil.
func (f FormInput) Validate() error {
	err := formValidator().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	uie := &UserInputError{}
	for _, fe := range verrs {
		uie.Fields = append(uie.Fields, fe.Field())
	}
	return uie
}

// Ready reports whether generation may be triggered for this form.
func (f FormInput) Ready() bool {
	return f.Validate() == nil
}
