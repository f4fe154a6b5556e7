package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joshp123/alexasweep/internal/sweep"
)

func newListCommand(app *app) *cobra.Command {
	var (
		filter   string
		sources  []string
		throttle time.Duration
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Enumerate devices without deleting anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			applySweepFlags(cmd, app.settings, filter, sources, throttle)

			client, err := app.buildClient()
			if err != nil {
				return err
			}
			srcList, err := app.settings.SweepSources()
			if err != nil {
				return err
			}

			devices, err := sweep.Remaining(ctx, client, sweep.Options{
				Sources: srcList,
				Filter:  app.settings.Sweep.Filter,
				Logger:  app.log,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(devices)
			}
			printDeviceTable(devices)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only show devices whose description or manufacturer contains this text")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "Listing to enumerate: entities or endpoints (repeatable)")
	cmd.Flags().DurationVar(&throttle, "throttle", 0, "Pause between API calls")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print devices as JSON")
	return cmd
}
