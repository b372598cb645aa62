package commands

import (
	"errors"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// Prompts are variables so tests can answer them.
var (
	promptName    = askName
	promptConfirm = askConfirm
)

func askName(message string) (string, error) {
	var name string
	err := survey.AskOne(&survey.Input{Message: message}, &name,
		survey.WithValidator(func(ans interface{}) error {
			if s, _ := ans.(string); strings.TrimSpace(s) == "" {
				return errors.New("a name is required")
			}
			return nil
		}),
	)
	return strings.TrimSpace(name), err
}

func askConfirm(message string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok)
	return ok, err
}
