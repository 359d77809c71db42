package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/alexshd/quadbench/internal/history"
	"github.com/alexshd/quadbench/internal/report"
)

var errNoHistory = errors.New("no history database: set history_path or pass --history-path")

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit    int
		function string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.store == nil {
				return errNoHistory
			}
			runs, err := a.store.Recent(cmd.Context(), limit, function)
			if err != nil {
				return err
			}
			return report.Runs(cmd.OutOrStdout(), a.cfg.Format, runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", history.DefaultLimit, "maximum runs to show")
	cmd.Flags().StringVarP(&function, "function", "f", "", "only runs of this catalog function")
	return cmd
}
