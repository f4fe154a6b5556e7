package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joshp123/alexasweep/internal/alexa"
	"github.com/joshp123/alexasweep/internal/sweep"
)

func printJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printDeviceTable(devices []alexa.Device) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tAPPLIANCE ID\tENTITY ID\tDESCRIPTION\tSOURCE")
	for _, dev := range devices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", dev.Name, dev.ID, dev.EntityID, dev.Description, dev.Source)
	}
	_ = w.Flush()
}

func printProbeTable(results []sweep.ProbeResult) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tENTITY ID\tSTATE")
	for _, result := range results {
		state := "present"
		if result.Gone {
			state = "gone"
		}
		if result.Error != "" {
			state = "error: " + result.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", result.Device.Name, result.Device.EntityID, state)
	}
	_ = w.Flush()
}
