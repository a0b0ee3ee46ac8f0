// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	inkerrors "inkwell/cli/internal/errors"
	"inkwell/cli/internal/gateway"
	"inkwell/cli/internal/httperrors"
	"inkwell/cli/internal/terminal"
)

var (
	loginEmail string
	loginForce bool
)

// loginCmd signs in with email and password and stores the credential.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Sign in to the CMS admin API",
	Long: `The login command exchanges your admin email and password for an access token.
The token and your identity are stored in the OS keychain and sent with every
subsequent admin request. When the API later rejects the token, the session is
removed and you are asked to sign in again.

The password is read without echo. For scripts, pipe it on stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		store, err := openSessionStore()
		if err != nil {
			return err
		}
		svc := newAuthService(store)

		if store.SignedIn() && !loginForce {
			if u, ok, _ := store.User(); ok {
				fmt.Printf("Already logged in as %s\n", u.Display())
				fmt.Println("   Use --force to sign in again.")
				return nil
			}
		}

		email := strings.TrimSpace(loginEmail)
		if email == "" {
			prompt := "Email: "
			email, err = terminal.Prompt(prompt)
			if err != nil {
				return inkerrors.Wrap(inkerrors.InvalidInput, "read email", err)
			}
		}
		password, err := terminal.ReadSecret("Password: ")
		if err != nil {
			return inkerrors.Wrap(inkerrors.InvalidInput, "read password", err)
		}

		stop := startInlineSpinner(cmd.OutOrStdout(), "Signing in", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)
		user, err := svc.Login(ctx, email, password)
		stop()
		if err != nil {
			if gateway.IsUnauthorized(err) {
				pterm.Error.Println("Invalid email or password.")
				return inkerrors.Wrap(inkerrors.InvalidInput, "login rejected", err)
			}
			if gateway.StatusCode(err) == 0 && !gateway.IsNetwork(err) {
				return err
			}
			return httperrors.Present(err, "signing in", cfg.APIBaseURL)
		}

		pterm.Success.Printf("Logged in as %s\n", user.Display())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Admin email (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginForce, "force", false, "Sign in again even when a session exists")
}
