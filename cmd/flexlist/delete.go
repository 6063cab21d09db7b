package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var errCancelled = errors.New("delete cancelled")

func newDeleteCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete path id...",
		Short: "Delete items, with their children, from a source.",
		Example: `
flexlist delete items.jsonl a1 g2
flexlist delete items.db --yes old-group`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ids := args[0], args[1:]
			if !yes {
				ok, err := confirmDelete(path, ids)
				if err != nil {
					return err
				}
				if !ok {
					return errCancelled
				}
			}
			src, err := a.open([]string{path})
			if err != nil {
				return err
			}
			defer src.Close()
			if err := src.Delete(cmd.Context(), ids); err != nil {
				return err
			}
			a.log.WithField("ids", ids).Info("items deleted")
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", strings.Join(ids, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}

func confirmDelete(path string, ids []string) (bool, error) {
	ok := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %d item(s) from %s?", len(ids), path)).
				Description(strings.Join(ids, ", ") + "\nChildren are deleted too. This cannot be undone.").
				Value(&ok).
				Affirmative("Delete").
				Negative("Cancel"),
		),
	).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
