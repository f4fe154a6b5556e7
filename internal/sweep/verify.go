package sweep

import (
	"context"
	"time"

	"github.com/joshp123/alexasweep/internal/alexa"
)

// Remaining re-enumerates and returns the devices still matching the
// filter. Delete responses lie often enough that a fresh listing is
// the only source of truth for what actually got removed.
func Remaining(ctx context.Context, client *alexa.Client, opts Options) ([]alexa.Device, error) {
	opts = opts.withDefaults()
	matched, _, err := enumerate(ctx, client, opts)
	if err != nil {
		return nil, err
	}
	return matched, nil
}

// ProbeResult pairs a still-listed device with its control-view probe.
// A device the listing still carries but the probe reports gone is a
// listing lagging behind, not a failed deletion.
type ProbeResult struct {
	Device alexa.Device `json:"device"`
	Gone   bool         `json:"gone"`
	Error  string       `json:"error,omitempty"`
}

// Probe checks each device against the per-device control view.
// Probe failures are recorded, not fatal.
func Probe(ctx context.Context, client *alexa.Client, devices []alexa.Device, throttle time.Duration) ([]ProbeResult, error) {
	results := make([]ProbeResult, 0, len(devices))
	for i, dev := range devices {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if i > 0 && throttle > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(throttle):
			}
		}

		result := ProbeResult{Device: dev}
		gone, err := client.DeviceGone(ctx, dev.EntityID)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Gone = gone
		}
		results = append(results, result)
	}
	return results, nil
}
