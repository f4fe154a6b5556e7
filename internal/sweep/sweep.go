package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/joshp123/alexasweep/internal/alexa"
	"github.com/joshp123/alexasweep/internal/snapshot"
)

// Announcer publishes run results to an external channel. Failures are
// advisory; a sweep never fails because announcing did.
type Announcer interface {
	AnnounceDeletion(ctx context.Context, d Deletion) error
	AnnounceSummary(ctx context.Context, r *Report) error
}

// Options controls one sweep run.
type Options struct {
	// Sources to enumerate, in order. Defaults to entities only.
	Sources []alexa.Source
	// Filter restricts deletion to matching devices. Empty matches all.
	Filter string
	// Throttle is the pause between delete calls.
	Throttle time.Duration
	// DryRun records what would be deleted without issuing deletes.
	DryRun bool

	Logger    zerolog.Logger
	Snapshots snapshot.Store
	Announcer Announcer
	Metrics   *Metrics
}

func (o Options) withDefaults() Options {
	if len(o.Sources) == 0 {
		o.Sources = []alexa.Source{alexa.SourceEntities}
	}
	if o.Throttle < 0 {
		o.Throttle = 0
	}
	return o
}

// Run executes the enumerate-then-delete workflow: list every source,
// parse and filter the records, then issue one delete per matched
// device, sequentially, in enumeration order. Enumeration failures
// abort before anything is deleted; per-device failures are logged and
// the loop moves on. On a canceled context the partial report is
// returned alongside ctx.Err().
func Run(ctx context.Context, client *alexa.Client, opts Options) (*Report, error) {
	if client == nil {
		return nil, fmt.Errorf("alexa client is required")
	}
	opts = opts.withDefaults()
	log := opts.Logger

	for _, src := range opts.Sources {
		if src == alexa.SourceEntities && client.DeletePrefix() == "" {
			return nil, fmt.Errorf("entities source needs the captured delete prefix")
		}
	}

	report := &Report{
		Host:      client.BaseURL(),
		Filter:    opts.Filter,
		DryRun:    opts.DryRun,
		StartedAt: time.Now(),
	}

	matched, enumerated, err := enumerate(ctx, client, opts)
	if err != nil {
		return nil, err
	}
	report.Enumerated = enumerated
	report.Matched = len(matched)
	log.Info().Int("matched", len(matched)).Str("filter", opts.Filter).Msg("matched devices")

	for i, dev := range matched {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now()
			return report, err
		}
		if i > 0 && opts.Throttle > 0 {
			select {
			case <-ctx.Done():
				report.FinishedAt = time.Now()
				return report, ctx.Err()
			case <-time.After(opts.Throttle):
			}
		}

		deletion := deleteOne(ctx, client, dev, opts.DryRun, log)
		if !deletion.DryRun {
			report.Attempted++
			if deletion.Accepted {
				report.Accepted++
			} else {
				report.Rejected++
			}
		}
		report.Deletions = append(report.Deletions, deletion)

		if opts.Metrics != nil {
			opts.Metrics.observeDeletion(deletion)
		}
		if opts.Announcer != nil {
			if err := opts.Announcer.AnnounceDeletion(ctx, deletion); err != nil {
				log.Warn().Err(err).Msg("announce deletion failed")
			}
		}
	}

	report.FinishedAt = time.Now()
	log.Info().
		Int("enumerated", report.Enumerated).
		Int("matched", report.Matched).
		Int("attempted", report.Attempted).
		Int("accepted", report.Accepted).
		Int("rejected", report.Rejected).
		Dur("took", report.Duration()).
		Msg("sweep finished")
	if report.Accepted > 0 {
		log.Warn().Msg("accepted means the API said yes, not that the device is gone; run verify to confirm")
	}

	if opts.Metrics != nil {
		opts.Metrics.observeRun(report)
	}
	if opts.Announcer != nil {
		if err := opts.Announcer.AnnounceSummary(ctx, report); err != nil {
			log.Warn().Err(err).Msg("announce summary failed")
		}
	}
	return report, nil
}

// enumerate lists every configured source once and returns the matched
// devices in enumeration order, plus the total record count.
func enumerate(ctx context.Context, client *alexa.Client, opts Options) ([]alexa.Device, int, error) {
	log := opts.Logger

	var matched []alexa.Device
	var total int
	for _, src := range opts.Sources {
		enum, err := client.Enumerate(ctx, src)
		if err != nil {
			var statusErr alexa.StatusError
			if errors.As(err, &statusErr) && statusErr.AuthRejected() {
				return nil, 0, fmt.Errorf("%s listing rejected, session capture is likely stale: %w", src, err)
			}
			return nil, 0, fmt.Errorf("enumerate %s: %w", src, err)
		}
		log.Info().Str("source", string(src)).Int("devices", len(enum.Devices)).Msg("enumerated")
		total += len(enum.Devices)

		if opts.Snapshots != nil {
			if err := opts.Snapshots.Save(ctx, string(src), enum.Raw); err != nil {
				log.Warn().Err(err).Str("source", string(src)).Msg("snapshot failed")
			}
		}

		for _, dev := range enum.Devices {
			if dev.MatchesFilter(opts.Filter) {
				matched = append(matched, dev)
			}
		}
	}
	return matched, total, nil
}

// deleteOne issues a single delete call for one device. One attempt,
// no retries; whatever comes back is recorded and the caller moves on.
func deleteOne(ctx context.Context, client *alexa.Client, dev alexa.Device, dryRun bool, log zerolog.Logger) Deletion {
	deletion := Deletion{Device: dev}
	if dryRun {
		deletion.DryRun = true
		log.Info().
			Str("name", dev.Name).
			Str("applianceId", string(dev.ID)).
			Msg("would delete")
		return deletion
	}

	status, err := client.DeleteAppliance(ctx, dev.ID)
	deletion.Status = status
	switch {
	case err != nil:
		deletion.Error = err.Error()
		log.Warn().Err(err).Str("name", dev.Name).Str("applianceId", string(dev.ID)).Msg("delete call failed")
	case status >= 200 && status < 300:
		deletion.Accepted = true
		log.Info().Int("status", status).Str("name", dev.Name).Str("applianceId", string(dev.ID)).Msg("delete accepted")
	default:
		deletion.Error = fmt.Sprintf("http status %d", status)
		log.Warn().Int("status", status).Str("name", dev.Name).Str("applianceId", string(dev.ID)).Msg("delete rejected")
	}
	return deletion
}
