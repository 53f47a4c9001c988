package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	log "github.com/sirupsen/logrus"
)

func newWatchCommand(cc *commandContext) *cobra.Command {
	var (
		publish string
		status  bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the catalog loaded and refresh it on every refresh event",
		Long: "Consume refresh events from the Redis stream and reload the catalog for each.\n" +
			"With --publish, enqueue a single refresh event and exit instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}

			switch {
			case publish != "":
				id, err := app.PublishRefresh(cmd.Context(), publish)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil

			case status:
				if app.Refresher == nil {
					return fmt.Errorf("refresh status: %w", errRedisRequired)
				}
				last, err := app.Refresher.LastRefresh(cmd.Context())
				if err != nil {
					return err
				}
				if cc.jsonOutput() {
					return writeJSON(cmd, last)
				}
				if last == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No refresh recorded yet")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderFields([][2]string{
					{"Event", last.EventID},
					{"At", last.At.Format(time.RFC3339)},
					{"Duration", last.Duration.Round(time.Millisecond).String()},
					{"Brands", strconv.Itoa(last.Brands)},
					{"Models", strconv.Itoa(last.Models)},
					{"Error", orDash(last.Error)},
				}))
				return nil
			}

			log.Info("👀 Watching for refresh events...")
			if err := app.Watch(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info("Watcher stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&publish, "publish", "", "Publish a refresh event with the given reason and exit")
	cmd.Flags().BoolVar(&status, "status", false, "Show the outcome of the last refresh and exit")
	return cmd
}
