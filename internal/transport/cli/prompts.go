package cli

import (
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

type Prompter interface {
	Input(message, def string) (string, error)
	Password(message string) (string, error)
	Select(message string, options []string, def string) (string, error)
	MultiSelect(message string, options []string, defaults []string) ([]string, error)
	Confirm(message string, def bool) (bool, error)
}

// SurveyPrompter asks on the terminal.
type SurveyPrompter struct{}

func (SurveyPrompter) Input(message, def string) (string, error) {
	var answer string
	prompt := &survey.Input{Message: message, Default: def}
	err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required))
	return strings.TrimSpace(answer), err
}

func (SurveyPrompter) Password(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Password{Message: message}, &answer, survey.WithValidator(survey.Required))
	return answer, err
}

func (SurveyPrompter) Select(message string, options []string, def string) (string, error) {
	var answer string
	prompt := &survey.Select{Message: message, Options: options}
	if def != "" {
		prompt.Default = def
	}
	err := survey.AskOne(prompt, &answer)
	return answer, err
}

func (SurveyPrompter) MultiSelect(message string, options []string, defaults []string) ([]string, error) {
	var answer []string
	prompt := &survey.MultiSelect{
		Message: message,
		Options: options,
		Help:    "Use space to select, enter to confirm.",
	}
	if len(defaults) > 0 {
		prompt.Default = defaults
	}
	err := survey.AskOne(prompt, &answer)
	return answer, err
}

func (SurveyPrompter) Confirm(message string, def bool) (bool, error) {
	answer := def
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &answer)
	return answer, err
}
