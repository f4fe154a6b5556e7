package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshp123/alexasweep/internal/announce"
	"github.com/joshp123/alexasweep/internal/sweep"
)

func newRunCommand(app *app) *cobra.Command {
	var (
		dryRun     bool
		assumeYes  bool
		filter     string
		sources    []string
		throttle   time.Duration
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Enumerate matching devices and delete them",
		Long: `run lists the configured sources, filters the records, then issues
one delete per matched device in enumeration order. A delete that the
API rejects is logged and the loop moves on. An accepted delete means
the API said yes, not that the device is gone; follow up with verify.`,
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

			var announcer sweep.Announcer
			if broker := app.settings.MQTT.Broker; broker != "" {
				publisher, err := announce.NewPublisher(announce.Config{
					Broker:      broker,
					Username:    app.settings.MQTT.Username,
					Password:    app.settings.MQTT.Password,
					TopicPrefix: app.settings.MQTT.TopicPrefix,
				})
				if err != nil {
					log.Warn().Err(err).Msg("mqtt broker unavailable, continuing without announcements")
				} else {
					defer publisher.Close()
					announcer = publisher
				}
			}

			if !dryRun && !assumeYes {
				ok, err := confirmSweep(app.settings.Sweep.Filter, client.BaseURL())
				if err != nil {
					return err
				}
				if !ok {
					log.Info().Msg("aborted")
					return nil
				}
			}

			metrics := sweep.NewMetrics()
			log.Info().
				Str("host", client.BaseURL()).
				Bool("dry_run", dryRun).
				Msg("starting sweep")

			report, runErr := sweep.Run(ctx, client, sweep.Options{
				Sources:   srcList,
				Filter:    app.settings.Sweep.Filter,
				Throttle:  app.settings.Sweep.Throttle,
				DryRun:    dryRun,
				Logger:    log,
				Snapshots: snapshots,
				Announcer: announcer,
				Metrics:   metrics,
			})

			if report != nil {
				if gateway := app.settings.Metrics.PushGateway; gateway != "" {
					if err := sweep.PushMetrics(gateway, app.settings.Metrics.Job, client, metrics); err != nil {
						log.Warn().Err(err).Msg("metrics push failed")
					}
				}
				if reportPath != "" {
					if err := writeReport(reportPath, report); err != nil {
						log.Warn().Err(err).Str("path", reportPath).Msg("report write failed")
					}
				}
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be deleted without deleting anything")
	cmd.Flags().BoolVar(&assumeYes, "yes", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&filter, "filter", "", "Only touch devices whose description or manufacturer contains this text")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "Listing to enumerate: entities or endpoints (repeatable)")
	cmd.Flags().DurationVar(&throttle, "throttle", 0, "Pause between delete calls")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the run report to this JSON file")
	return cmd
}

func confirmSweep(filter, host string) (bool, error) {
	if filter == "" {
		fmt.Fprintf(os.Stderr, "About to delete EVERY listed device on %s. Continue? [y/N]: ", host)
	} else {
		fmt.Fprintf(os.Stderr, "About to delete devices matching %q on %s. Continue? [y/N]: ", filter, host)
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func writeReport(path string, report *sweep.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
