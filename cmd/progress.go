// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"inkwell/cli/internal/logging"
	"inkwell/cli/internal/schema"
)

// applyProgress renders a live area during a schema run: a spinner with the
// statement counter and the statement in flight. Failures are printed above
// the area so they stay on screen after it is removed.
type applyProgress struct {
	mu      sync.Mutex
	area    *pterm.AreaPrinter
	frames  []string
	frame   int
	done    int
	total   int
	failed  int
	current string
	stop    chan struct{}
	wg      sync.WaitGroup
}

func newApplyProgress() *applyProgress {
	return &applyProgress{
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		stop:   make(chan struct{}),
	}
}

// start hides the cursor and begins animating. A terminal that cannot host
// an area simply gets no live output.
func (p *applyProgress) start() {
	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return
	}
	p.area = area
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				p.render()
			case <-p.stop:
				return
			}
		}
	}()
}

// observe is the Applier progress hook.
func (p *applyProgress) observe(ev schema.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = ev.Index
	p.total = ev.Total
	p.current = firstLine(ev.Statement)
	if ev.Err == nil {
		return
	}
	p.failed++
	if p.area != nil {
		// printed above the live area
		p.area.Clear()
		pterm.Printf("%s statement %d: %s\n", pterm.FgRed.Sprint("✗"), ev.Index, firstLine(ev.Statement))
	}
}

func (p *applyProgress) render() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.area == nil {
		return
	}
	p.frame++
	status := fmt.Sprintf("%s Applying schema %d/%d", p.frames[p.frame%len(p.frames)], p.done, p.total)
	if p.failed > 0 {
		status += pterm.FgRed.Sprintf("  (%d failed)", p.failed)
	}
	if p.current != "" {
		status += "\n  " + pterm.FgGray.Sprint(p.current)
	}
	p.area.Update(status)
}

func (p *applyProgress) finish() {
	if p.area == nil {
		return
	}
	close(p.stop)
	p.wg.Wait()
	_ = p.area.Stop()
	p.area = nil
	cursor.Show()
}

// firstLine shortens a statement to its first line for one-row display.
func firstLine(stmt string) string {
	line, _, more := strings.Cut(strings.TrimSpace(stmt), "\n")
	const max = 80
	if short, cut := logging.Truncate(line, max); cut {
		return short + "..."
	}
	if more {
		return line + " ..."
	}
	return line
}
