package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/joshp123/alexasweep/internal/alexa"
	"github.com/joshp123/alexasweep/internal/config"
	"github.com/joshp123/alexasweep/internal/logging"
	"github.com/joshp123/alexasweep/internal/snapshot"
)

type app struct {
	settings *config.Settings
	log      zerolog.Logger
}

func newRootCommand() *cobra.Command {
	app := &app{}
	var (
		configPath string
		logLevel   string
		host       string
		region     string
		cookieFile string
	)

	rootCmd := &cobra.Command{
		Use:   "alexasweep",
		Short: "Sweep stale smart home devices out of an Alexa account",
		Long: `alexasweep enumerates the devices an Alexa account lists and deletes
the ones matching a filter, one call per device, replaying a session
captured from the Alexa app. The public API has no bulk delete, so
this is the workflow the app itself would drive, minus the tapping.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				settings.LogLevel = logLevel
			}
			if cmd.Flags().Changed("host") {
				settings.Alexa.Host = host
			}
			if cmd.Flags().Changed("region") {
				settings.Alexa.Region = region
			}
			if cmd.Flags().Changed("cookie-file") {
				data, err := os.ReadFile(cookieFile)
				if err != nil {
					return fmt.Errorf("read cookie file: %w", err)
				}
				settings.Session.Cookie = strings.TrimSpace(string(data))
			}
			app.settings = settings
			app.log = logging.New(settings.LogLevel)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file (default: ./alexasweep.toml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "Alexa API host (overrides config and ALEXA_HOST)")
	rootCmd.PersistentFlags().StringVar(&region, "region", "", "Region key resolving the API host: na, eu or fe")
	rootCmd.PersistentFlags().StringVar(&cookieFile, "cookie-file", "", "Read the captured Cookie header from this file")

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newListCommand(app))
	rootCmd.AddCommand(newVerifyCommand(app))
	return rootCmd
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func (a *app) buildClient() (*alexa.Client, error) {
	if err := a.settings.Validate(); err != nil {
		return nil, err
	}
	session, err := a.settings.NewSession()
	if err != nil {
		return nil, err
	}
	return alexa.NewClient(a.settings.AlexaConfig(), session)
}

// buildSnapshots assembles the configured snapshot stores. Returns nil
// when none are configured.
func (a *app) buildSnapshots() (snapshot.Store, error) {
	var stores snapshot.Tee
	if dir := a.settings.Snapshot.Dir; dir != "" {
		store, err := snapshot.NewDirStore(dir)
		if err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	if s3 := a.settings.Snapshot.S3; s3.Endpoint != "" {
		store, err := snapshot.NewS3Store(snapshot.S3Config{
			Endpoint:      s3.Endpoint,
			Bucket:        s3.Bucket,
			Prefix:        s3.Prefix,
			AccessKeyFile: s3.AccessKeyFile,
			SecretKeyFile: s3.SecretKeyFile,
			Region:        s3.Region,
		})
		if err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	if len(stores) == 0 {
		return nil, nil
	}
	return stores, nil
}

// applySweepFlags lets per-command flags override what the config file
// says, but only when actually set.
func applySweepFlags(cmd *cobra.Command, settings *config.Settings, filter string, sources []string, throttle time.Duration) {
	if cmd.Flags().Changed("filter") {
		settings.Sweep.Filter = filter
	}
	if cmd.Flags().Changed("source") {
		settings.Sweep.Sources = sources
	}
	if cmd.Flags().Changed("throttle") {
		settings.Sweep.Throttle = throttle
	}
}
