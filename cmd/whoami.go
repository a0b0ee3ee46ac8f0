package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"inkwell/cli/internal/auth"
)

// whoamiCmd shows the signed-in admin, validating the session with the API.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show current authenticated account",
	Long: `The whoami command asks the API who the stored token belongs to. When the API
cannot be reached, the identity saved at login is shown instead. A rejected
token signs you out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore()
		if err != nil {
			return err
		}

		u, err := newAuthService(store).Me(cmd.Context())
		switch {
		case errors.Is(err, auth.ErrNotSignedIn):
			printNotLoggedIn()
			return nil
		case err != nil:
			return apiError(err, "checking your session")
		}

		fmt.Printf("👤 Current user: %s\n", u.Display())
		if u.Role != "" {
			fmt.Printf("   Role: %s\n", u.Role)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
