package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshp123/alexasweep/internal/sweep"
)

func newVerifyCommand(app *app) *cobra.Command {
	var (
		filter   string
		sources  []string
		throttle time.Duration
		probe    bool
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-enumerate and report what still matches",
		Long: `verify fetches a fresh listing and reports the devices still
matching the filter. Delete responses lie often enough that this is
the only trustworthy check after a sweep. With --probe each remaining
device is also checked against the per-device control view, which
separates devices that are really present from listings lagging
behind.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			applySweepFlags(cmd, app.settings, filter, sources, throttle)
			log := app.log

			client, err := app.buildClient()
			if err != nil {
				return err
			}
			srcList, err := app.settings.SweepSources()
			if err != nil {
				return err
			}
			snapshots, err := app.buildSnapshots()
			if err != nil {
				return err
			}

			devices, err := sweep.Remaining(ctx, client, sweep.Options{
				Sources:   srcList,
				Filter:    app.settings.Sweep.Filter,
				Logger:    log,
				Snapshots: snapshots,
			})
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				log.Info().Msg("no matching devices remain")
				return nil
			}

			if probe {
				results, err := sweep.Probe(ctx, client, devices, app.settings.Sweep.Throttle)
				if err != nil {
					return err
				}
				if jsonOut {
					if err := printJSON(results); err != nil {
						return err
					}
				} else {
					printProbeTable(results)
				}

				present := 0
				for _, result := range results {
					if !result.Gone {
						present++
					}
				}
				if present == 0 {
					log.Info().Int("listed", len(results)).Msg("every listed device probes as gone; the listing is lagging")
					return nil
				}
				return fmt.Errorf("%d devices still present", present)
			}

			if jsonOut {
				if err := printJSON(devices); err != nil {
					return err
				}
			} else {
				printDeviceTable(devices)
			}
			return fmt.Errorf("%d matching devices still listed", len(devices))
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only check devices whose description or manufacturer contains this text")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "Listing to enumerate: entities or endpoints (repeatable)")
	cmd.Flags().DurationVar(&throttle, "throttle", 0, "Pause between probe calls")
	cmd.Flags().BoolVar(&probe, "probe", false, "Probe each remaining device against the control view")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	return cmd
}
