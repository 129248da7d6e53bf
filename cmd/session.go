package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oumajohn/vmhost-cli/internal/adapters/render/console"
	"github.com/oumajohn/vmhost-cli/internal/domain"
)

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the stored session token",
	}

	cmd.AddCommand(
		newSessionSetCmd(app),
		newSessionShowCmd(app),
		newSessionClearCmd(app),
	)

	return cmd
}

func newSessionSetCmd(app *app) *cobra.Command {
	var token string
	var role string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a bearer token obtained from the hosting service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(token) == "" {
				entered, err := readTokenInteractively(cmd)
				if err != nil {
					return err
				}
				token = entered
			}

			session := domain.Session{
				Token: strings.TrimSpace(token),
				Role:  domain.ParseRole(role),
			}
			if err := app.session.SetSession(cmd.Context(), session); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Session stored.")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "bearer token (prompted when omitted)")
	cmd.Flags().StringVar(&role, "role", "Standard User", "session role reported at login")

	return cmd
}

func readTokenInteractively(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: pass --token when stdin is not a terminal", domain.ErrValidation)
	}

	fmt.Fprint(cmd.OutOrStdout(), "Token: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("%w: token is required", domain.ErrValidation)
	}
	return token, nil
}

func newSessionShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Describe the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rendered, err := console.RenderSession(app.session.Describe(), app.now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
}

func newSessionClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Log out and forget the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session cleared.")
			return nil
		},
	}
}
