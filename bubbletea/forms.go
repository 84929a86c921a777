package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/vedaai/veda"
)

const minPasswordLen = 6

// ErrFormAborted is returned when the user leaves a form.
var ErrFormAborted = errors.New("form aborted")

// LoginForm builds a form that fills c.
func LoginForm(c *veda.Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(brand).Description("Log in to continue."),
			huh.NewInput().
				Title("Email").
				Value(&c.Email).
				Validate(ValidateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(required("password")),
		),
	)
}

// RegisterForm builds a form that fills r.
func RegisterForm(r *veda.Registration) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(brand).Description("Create an account."),
			huh.NewInput().
				Title("Username").
				Value(&r.Username).
				Validate(required("username")),
			huh.NewInput().
				Title("Email").
				Value(&r.Email).
				Validate(ValidateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&r.Password).
				Validate(ValidatePassword),
		),
	)
}

// RunForm runs f until it is submitted. Aborting returns ErrFormAborted.
func RunForm(ctx context.Context, f *huh.Form) error {
	err := f.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrFormAborted
	}
	return err
}

// ValidateEmail accepts a single bare address.
func ValidateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return fmt.Errorf("%q is not a valid email", s)
	}
	return nil
}

// ValidatePassword requires a minimum length.
func ValidatePassword(s string) error {
	if len(s) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
