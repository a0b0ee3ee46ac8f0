// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package schema applies a SQL schema file to the database one statement at
// a time. Statements run strictly in file order; a failing statement is
// logged and the run moves on, so one bad DDL line never blocks the rest.
package schema

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"inkwell/cli/internal/logging"
)

// ErrAtomicUnsupported is returned when atomic mode is requested with an
// executor that cannot open a transaction.
var ErrAtomicUnsupported = errors.New("executor does not support transactions")

// Executor runs a single SQL statement.
type Executor interface {
	Exec(ctx context.Context, stmt string) error
}

// Transactor is implemented by executors that can run a batch inside one
// transaction. fn's error rolls the transaction back.
type Transactor interface {
	InTx(ctx context.Context, fn func(Executor) error) error
}

// Failure records a statement that the executor rejected.
type Failure struct {
	// Index is the 1-based position of the statement in the file.
	Index     int
	Statement string
	Err       error
}

// Report summarizes one run.
type Report struct {
	Total    int
	Applied  int
	Failures []Failure
	// Skipped counts statements never attempted (cancelled, or after an
	// atomic-mode failure).
	Skipped int
	// RolledBack is set when an atomic run was rolled back; Applied is then 0.
	RolledBack bool
	Elapsed    time.Duration
}

// Failed returns the number of rejected statements.
func (r Report) Failed() int { return len(r.Failures) }

// OK reports whether every statement was applied.
func (r Report) OK() bool {
	return len(r.Failures) == 0 && r.Skipped == 0 && !r.RolledBack
}

// Progress is delivered after each attempted statement.
type Progress struct {
	Index     int
	Total     int
	Statement string
	Err       error
}

// Applier runs split statements through an Executor.
type Applier struct {
	exec       Executor
	log        *zap.Logger
	atomic     bool
	onProgress func(Progress)
}

// Option configures an Applier.
type Option func(*Applier)

// WithLogger sets the logger receiving per-statement failures and the
// completion line.
func WithLogger(l *zap.Logger) Option {
	return func(a *Applier) {
		if l != nil {
			a.log = l
		}
	}
}

// WithAtomic runs the whole file in one transaction and stops at the first
// failure. The executor must implement Transactor.
func WithAtomic(on bool) Option {
	return func(a *Applier) { a.atomic = on }
}

// WithProgress registers a callback invoked after each statement.
func WithProgress(fn func(Progress)) Option {
	return func(a *Applier) { a.onProgress = fn }
}

// NewApplier creates an Applier over exec.
func NewApplier(exec Executor, opts ...Option) *Applier {
	a := &Applier{exec: exec, log: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ApplyFile reads path and applies its statements.
func (a *Applier) ApplyFile(ctx context.Context, path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read schema file: %w", err)
	}
	a.log.Debug("schema file loaded", zap.String("path", path), zap.Int("bytes", len(data)))
	return a.Apply(ctx, string(data))
}

// Apply splits sql and executes each statement in order.
//
// Statement failures never produce an error; they are logged and collected
// in the Report. The returned error is reserved for runs that could not
// start (atomic mode without transaction support, a failed BEGIN) or an
// atomic run whose COMMIT failed. The completion line is logged in every case.
func (a *Applier) Apply(ctx context.Context, sql string) (Report, error) {
	stmts := Split(sql)
	rep := Report{Total: len(stmts)}
	start := time.Now()

	var err error
	if a.atomic {
		err = a.applyAtomic(ctx, stmts, &rep)
	} else {
		a.applyEach(ctx, a.exec, stmts, &rep)
	}
	rep.Elapsed = time.Since(start)

	a.log.Info("schema apply complete",
		zap.Int("total", rep.Total),
		zap.Int("applied", rep.Applied),
		zap.Int("failed", rep.Failed()),
		zap.Int("skipped", rep.Skipped),
		zap.Bool("rolled_back", rep.RolledBack),
		zap.Duration("elapsed", rep.Elapsed))
	return rep, err
}

func (a *Applier) applyEach(ctx context.Context, exec Executor, stmts []string, rep *Report) {
	for i, stmt := range stmts {
		if ctx.Err() != nil {
			rep.Skipped = len(stmts) - i
			a.log.Warn("schema apply cancelled", zap.Int("remaining", rep.Skipped), zap.Error(ctx.Err()))
			return
		}
		// failures are recorded in rep; keep going
		_ = a.run(ctx, exec, i, stmt, len(stmts), rep)
	}
}

func (a *Applier) applyAtomic(ctx context.Context, stmts []string, rep *Report) error {
	tx, ok := a.exec.(Transactor)
	if !ok {
		rep.Skipped = len(stmts)
		return ErrAtomicUnsupported
	}
	if len(stmts) == 0 {
		return nil
	}

	began := false
	stopped := false
	err := tx.InTx(ctx, func(exec Executor) error {
		began = true
		for i, stmt := range stmts {
			if err := ctx.Err(); err != nil {
				rep.Skipped = len(stmts) - i
				stopped = true
				return err
			}
			if err := a.run(ctx, exec, i, stmt, len(stmts), rep); err != nil {
				rep.Skipped = len(stmts) - i - 1
				stopped = true
				return err
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}

	if !began {
		rep.Skipped = len(stmts)
		return fmt.Errorf("begin transaction: %w", err)
	}
	rep.RolledBack = true
	rep.Applied = 0
	a.log.Warn("transaction rolled back", zap.Error(err))
	if !stopped {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// run executes one statement, records the outcome and notifies progress.
func (a *Applier) run(ctx context.Context, exec Executor, i int, stmt string, total int, rep *Report) error {
	err := exec.Exec(ctx, stmt)
	if err != nil {
		rep.Failures = append(rep.Failures, Failure{Index: i + 1, Statement: stmt, Err: err})
		a.log.Error("statement failed",
			zap.Int("index", i+1),
			zap.String("error", logging.Mask(err.Error())),
			logging.Statement(stmt))
	} else {
		rep.Applied++
		a.log.Debug("statement applied", zap.Int("index", i+1), logging.Statement(stmt))
	}
	if a.onProgress != nil {
		a.onProgress(Progress{Index: i + 1, Total: total, Statement: stmt, Err: err})
	}
	return err
}
