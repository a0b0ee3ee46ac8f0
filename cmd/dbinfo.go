// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"net/url"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	inkerrors "inkwell/cli/internal/errors"
	"inkwell/cli/internal/keychain"
)

// dbinfoCmd shows the DSN the postgres executor would use, password masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show current database connection string",
	Long: `The dbinfo command displays the database connection string (DSN) used by
'schema apply --via postgres', with the password masked. DATABASE_URL is
checked first, then the DSN saved by 'inkwell connect'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, source, err := resolveDSN()
		if inkerrors.Is(err, inkerrors.InvalidInput) {
			return nil
		}
		if err != nil {
			return err
		}

		pterm.Printf("Using DSN from %s\n", source)
		pterm.Println()
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).
			Println(maskPassword(dsn))
		pterm.Println()
		pterm.Println("To update this connection, run: inkwell connect")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}

// resolveDSN returns the Postgres DSN and where it came from: DATABASE_URL
// first, then the keychain.
func resolveDSN() (dsn, source string, err error) {
	if env := strings.TrimSpace(cfg.DatabaseURL); env != "" {
		return env, "DATABASE_URL environment variable", nil
	}

	km, err := openKeychain()
	if err != nil {
		return "", "", err
	}
	dsn, err = km.LoadDBDSN()
	if errors.Is(err, keychain.ErrNotFound) || (err == nil && strings.TrimSpace(dsn) == "") {
		pterm.Println("⚠️  No database connection configured")
		pterm.Println("   Please run: inkwell connect")
		return "", "", inkerrors.New(inkerrors.InvalidInput, "no database connection configured")
	}
	if err != nil {
		return "", "", err
	}
	return dsn, "OS keychain", nil
}

// maskPassword replaces the password in a PostgreSQL URL DSN with asterisks.
// Keyword/value DSNs (host=... password=...) fall back to the simple form.
func maskPassword(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return maskPasswordSimple(dsn)
	}
	if u.User == nil {
		return dsn
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), "xxx")
	return strings.Replace(u.String(), ":xxx@", ":***@", 1)
}

// maskPasswordSimple handles DSNs that do not parse as URLs.
func maskPasswordSimple(dsn string) string {
	if i := strings.Index(strings.ToLower(dsn), "password="); i >= 0 {
		start := i + len("password=")
		end := strings.IndexAny(dsn[start:], " \t")
		if end < 0 {
			return dsn[:start] + "***"
		}
		return dsn[:start] + "***" + dsn[start+end:]
	}

	atIndex := strings.Index(dsn, "@")
	if atIndex == -1 {
		return dsn
	}
	beforeAt := dsn[:atIndex]
	colonIndex := strings.LastIndex(beforeAt, ":")
	if colonIndex == -1 {
		return dsn
	}
	protocolEnd := strings.Index(dsn, "://")
	if protocolEnd != -1 && colonIndex < protocolEnd+3 {
		return dsn
	}
	return dsn[:colonIndex+1] + "***" + dsn[atIndex:]
}
