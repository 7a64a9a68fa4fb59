// Package shell is the interactive terminal front end: a login form, a
// registration form, the verification prompt and the home view, all driven
// by a service.Controller.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	MsgRegistered         = "Registration successful!"
	MsgMissingField       = "Please fill in all fields"
	MsgDuplicateUsername  = "Username already exists"
	MsgInvalidCredentials = "Invalid username or password"
	MsgLoginCancelled     = "Login cancelled"
	MsgHome               = "Good Job! You Logged In!"
)

// Shell reads commands line by line. It is not safe for concurrent use.
type Shell struct {
	Controller   *service.Controller
	Registration *service.RegistrationService

	in  *bufio.Scanner
	out io.Writer
}

func New(ctrl *service.Controller, reg *service.RegistrationService, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		Controller:   ctrl,
		Registration: reg,
		in:           bufio.NewScanner(in),
		out:          out,
	}
}

// Run shows the menu for the current application state until the user quits,
// input ends or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		var (
			more bool
			err  error
		)
		if user, ok := s.Controller.State().User(); ok {
			more = s.home(ctx, user)
		} else {
			more, err = s.loggedOut(ctx)
		}
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

func (s *Shell) loggedOut(ctx context.Context) (bool, error) {
	s.println()
	s.println("[l]ogin [r]egister [q]uit")
	choice, ok := s.readLine("> ")
	if !ok {
		return false, nil
	}

	switch strings.ToLower(choice) {
	case "l", "login":
		return true, s.login(ctx)
	case "r", "register":
		s.register(ctx)
		return true, nil
	case "q", "quit":
		return false, nil
	default:
		s.println("Unknown option:", choice)
		return true, nil
	}
}

func (s *Shell) login(ctx context.Context) error {
	username, _ := s.readLine("Username: ")
	password, _ := s.readLine("Password: ")
	phone, _ := s.readLine("Phone (+1XXXXXXXXXX): ")

	result, err := s.Controller.Login(ctx, username, password, phone, s)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoginInProgress), errors.Is(err, service.ErrAlreadyLoggedIn):
			s.println(err.Error())
			return nil
		case errors.Is(err, service.ErrInvalidState):
			slogx.FromContext(ctx).Error("login state violation", "err", err)
			s.println("Something went wrong, please try again")
			return nil
		default:
			return fmt.Errorf("failed to log in: %w", err)
		}
	}

	switch result.Kind {
	case domain.ResultInvalidCredentials:
		s.println(MsgInvalidCredentials)
	case domain.ResultTwoFactorFailed:
		s.println("Verification failed:", result.Reason)
	case domain.ResultCancelled:
		s.println(MsgLoginCancelled)
	}
	return nil
}

// PromptCode implements service.CodePrompter. A blank line or end of input
// closes the prompt.
func (s *Shell) PromptCode(_ context.Context, p service.Prompt) (string, bool) {
	s.println("A verification code has been sent to", p.Destination)
	if p.Notice != "" {
		s.println(p.Notice)
	}
	code, ok := s.readLine("Code (blank to cancel): ")
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

func (s *Shell) register(ctx context.Context) {
	username, _ := s.readLine("Username: ")
	password, _ := s.readLine("Password: ")
	phone, _ := s.readLine("Phone (+1XXXXXXXXXX): ")

	_, err := s.Registration.Register(ctx, username, password, phone)
	switch {
	case err == nil:
		s.println(MsgRegistered)
	case errors.Is(err, service.ErrMissingField):
		s.println(MsgMissingField)
	case errors.Is(err, service.ErrDuplicateUsername):
		s.println(MsgDuplicateUsername)
	default:
		slogx.FromContext(ctx).Error("registration failed", "err", err)
		s.println("Registration failed, please try again")
	}
}

func (s *Shell) home(ctx context.Context, user domain.User) bool {
	s.println()
	s.println(MsgHome)
	s.println("Signed in as", user.Username)
	s.println("[s]ign out [q]uit")

	choice, ok := s.readLine("> ")
	if !ok {
		return false
	}

	switch strings.ToLower(choice) {
	case "s", "sign out", "signout":
		s.Controller.SignOut(ctx)
		s.println("Signed out")
		return true
	case "q", "quit":
		return false
	default:
		s.println("Unknown option:", choice)
		return true
	}
}

// readLine prints prompt and returns the next trimmed line. ok is false at
// end of input.
func (s *Shell) readLine(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Shell) println(args ...any) {
	fmt.Fprintln(s.out, args...)
}
