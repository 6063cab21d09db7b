package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/flexlist/internal/datasource"
	"github.com/vanderheijden86/flexlist/pkg/state"
	"github.com/vanderheijden86/flexlist/pkg/ui"
	"github.com/vanderheijden86/flexlist/pkg/watcher"
)

func newBrowseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse a list interactively.",
		Long: `Browse a list interactively. Rows can be expanded, selected, filtered,
moved and removed; removals can be undone until the undo timeout runs out,
after which they are deleted from the source. The source is reloaded when
it changes on disk.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("browse needs a terminal; use list for plain output")
			}
			return a.browse(cmd.Context(), args)
		},
	}
}

func (a *app) browse(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := a.open(args)
	if err != nil {
		return err
	}
	defer src.Close()

	items, err := datasource.LoadItems(ctx, src)
	if err != nil {
		return fmt.Errorf("loading %s: %w", src.Path(), err)
	}

	opts := ui.Options{
		Config: a.cfg,
		Source: src,
		Logger: a.log,
	}
	if path := src.Path(); path != datasource.Stdin {
		if abs, err := filepath.Abs(path); err == nil {
			opts.StateName = abs
		}
		w, err := watcher.NewWatcher(path, watcher.WithLogger(a.log))
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			a.log.WithError(err).Warn("not watching source")
		} else {
			defer w.Stop()
			opts.Watcher = w
		}
	}
	if store, err := state.Open(a.cfg.State.Dir); err != nil {
		a.log.WithError(err).Warn("list state will not be saved")
	} else {
		opts.Store = store
	}

	m := ui.New(ctx, items, opts)
	return runTUIProgram(ctx, m)
}

// runTUIProgram runs m until it quits, quitting it on SIGINT or SIGTERM
// and killing it when a second signal arrives or it does not stop in time.
func runTUIProgram(ctx context.Context, m *ui.Model) error {
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)
	m.Sender().Bind(p)

	runDone := make(chan struct{})
	defer close(runDone)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}
		p.Quit()
		select {
		case <-runDone:
		case <-sigCh:
			p.Kill()
		case <-time.After(5 * time.Second):
			p.Kill()
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
