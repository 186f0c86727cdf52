package commands

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrConfirmationRequired is returned when a prompt is needed but stdin is
// not a terminal.
var ErrConfirmationRequired = errors.New("confirmation required; rerun with --yes")

// promptConfirmer answers grid confirmations with a huh prompt, or yes
// without asking when assumeYes is set.
type promptConfirmer struct {
	assumeYes bool
}

func (p promptConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, ErrConfirmationRequired
	}

	var ok bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}
