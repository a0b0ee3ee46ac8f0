// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	inkerrors "inkwell/cli/internal/errors"
	"inkwell/cli/internal/logging"
	"inkwell/cli/internal/schema"
)

var (
	schemaFile   string
	schemaVia    string
	schemaAtomic bool
	schemaStrict bool
	schemaDryRun bool
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Set up the CMS database schema",
}

var schemaApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a SQL schema file statement by statement",
	Long: `The apply command splits the schema file into statements and executes them one at
a time, in file order. A statement that fails is reported and the run continues
with the next one; earlier statements are not rolled back.

Executors:
  rpc       POST each statement to the database service's exec_sql procedure
            (INKWELL_SERVICE_URL, INKWELL_SERVICE_KEY)
  postgres  run directly on Postgres (DATABASE_URL or 'inkwell connect')

--atomic (postgres only) runs the whole file in one transaction and stops at
the first failure. --strict exits non-zero when any statement failed.`,
	Args: cobra.NoArgs,
	RunE: runSchemaApply,
}

func runSchemaApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := schemaFile
	if path == "" {
		path = cfg.Schema.File
	}

	if schemaDryRun {
		data, err := os.ReadFile(path)
		if err != nil {
			return inkerrors.Wrap(inkerrors.InvalidInput, "read schema file", err)
		}
		printPartition(path, schema.Split(string(data)))
		return nil
	}

	exec, closeExec, err := newSchemaExecutor(cmd)
	if err != nil {
		return err
	}
	defer closeExec()

	if schemaAtomic {
		if _, ok := exec.(schema.Transactor); !ok {
			return inkerrors.New(inkerrors.InvalidInput, "--atomic needs --via postgres")
		}
	}

	progress := newApplyProgress()
	applier := schema.NewApplier(exec,
		schema.WithLogger(logger.Named("schema")),
		schema.WithAtomic(schemaAtomic),
		schema.WithProgress(progress.observe),
	)

	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Schema:   ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(path))
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Executor: ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(schemaVia))
	pterm.Println()

	progress.start()
	rep, err := applier.ApplyFile(ctx, path)
	progress.finish()

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return inkerrors.Wrap(inkerrors.InvalidInput, "schema file not found", err)
		}
		printReport(rep)
		return err
	}
	printReport(rep)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if schemaStrict && rep.Failed() > 0 {
		return inkerrors.New(inkerrors.StatementsFailed, fmt.Sprintf("%d of %d statements failed", rep.Failed(), rep.Total))
	}
	return nil
}

// newSchemaExecutor builds the executor selected by --via.
func newSchemaExecutor(cmd *cobra.Command) (schema.Executor, func(), error) {
	switch strings.ToLower(schemaVia) {
	case "rpc", "":
		if cfg.Schema.ServiceKey == "" {
			pterm.Warning.Println("INKWELL_SERVICE_KEY is not set; the exec_sql call will be unauthenticated.")
		}
		exec := schema.NewRPCExecutor(cfg.ServiceBaseURL(), cfg.Schema.ServiceKey, cfg.Schema.RPCPath,
			gatewayOptions()...)
		return exec, func() {}, nil

	case "postgres", "pg":
		dsn, source, err := resolveDSN()
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using database", zap.String("source", source), zap.String("dsn", logging.Mask(dsn)))

		stop := startInlineSpinner(cmd.OutOrStdout(), "connecting to database", []string{"-", "\\", "|", "/"}, 100*time.Millisecond)
		exec, err := schema.ConnectPostgres(cmd.Context(), dsn, 5*time.Second)
		stop()
		if err != nil {
			pterm.Println("❌ Connection failed. Please check your database credentials and network connection.")
			return nil, nil, inkerrors.Wrap(inkerrors.Unavailable, "connect to database", err)
		}
		return exec, exec.Close, nil

	default:
		return nil, nil, inkerrors.New(inkerrors.InvalidInput, fmt.Sprintf("unknown executor %q (want rpc or postgres)", schemaVia))
	}
}

func printPartition(path string, stmts []string) {
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprintf("%d statements in %s", len(stmts), path))
	pterm.Println()
	for i, s := range stmts {
		pterm.Printf("%4d  %s\n", i+1, firstLine(s))
	}
}

func printReport(rep schema.Report) {
	var b strings.Builder
	fmt.Fprintf(&b, "Statements: %d\n", rep.Total)
	fmt.Fprintf(&b, "Applied:    %d\n", rep.Applied)
	fmt.Fprintf(&b, "Failed:     %d\n", rep.Failed())
	if rep.Skipped > 0 {
		fmt.Fprintf(&b, "Skipped:    %d\n", rep.Skipped)
	}
	fmt.Fprintf(&b, "Duration:   %s", rep.Elapsed.Round(time.Millisecond))
	if rep.RolledBack {
		b.WriteString("\n\nThe transaction was rolled back; no changes were kept.")
	}

	var title string
	switch {
	case rep.RolledBack:
		title = pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Schema Rolled Back")
	case rep.OK():
		title = pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("Schema Applied")
	default:
		title = pterm.NewStyle(pterm.FgYellow, pterm.Bold).Sprint("Schema Applied With Errors")
	}
	pterm.Println(pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Sprint(b.String()))

	for _, f := range rep.Failures {
		pterm.Printf("  %s #%d %s\n", pterm.FgRed.Sprint("✗"), f.Index, firstLine(f.Statement))
		pterm.Printf("      %s\n", logging.PresentError("", f.Err))
	}
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaApplyCmd)

	schemaApplyCmd.Flags().StringVarP(&schemaFile, "file", "f", "", "Schema file (default from config: database/schema.sql)")
	schemaApplyCmd.Flags().StringVar(&schemaVia, "via", "rpc", "Executor: rpc or postgres")
	schemaApplyCmd.Flags().BoolVar(&schemaAtomic, "atomic", false, "Run in one transaction and stop at the first failure (postgres only)")
	schemaApplyCmd.Flags().BoolVar(&schemaStrict, "strict", false, "Exit non-zero when any statement failed")
	schemaApplyCmd.Flags().BoolVar(&schemaDryRun, "dry-run", false, "Print the statements without executing them")
}
