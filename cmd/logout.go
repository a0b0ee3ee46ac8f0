// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var logoutAll bool

// logoutCmd clears the stored session, notifying the API first (best effort).
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored session",
	Long: `The logout command asks the API to invalidate the current token (best effort,
it works offline too) and removes the token and identity from the OS keychain.

With --all the saved database connection is removed as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if err := newAuthService(store).Logout(ctx); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}

		if logoutAll {
			km, err := openKeychain()
			if err != nil {
				return err
			}
			if err := km.ClearAll(); err != nil {
				return fmt.Errorf("clear keychain: %w", err)
			}
			fmt.Println("✅ Session and database connection have been removed")
			return nil
		}
		fmt.Println("✅ Signed out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "Also remove the saved database connection")
}
