package alexa

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Source identifies which listing produced a device record.
type Source string

const (
	SourceEntities  Source = "entities"
	SourceEndpoints Source = "endpoints"
)

func ParseSource(value string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "entities":
		return SourceEntities, nil
	case "endpoints", "graphql":
		return SourceEndpoints, nil
	}
	return "", fmt.Errorf("unknown source %q (want entities or endpoints)", value)
}

// ApplianceID is the opaque token the deletion endpoint addresses one
// appliance registration by. Endpoints records carry it verbatim;
// entities records don't, so it is rebuilt there from the record
// description joined to the captured delete prefix, the same shape the
// app puts on the wire.
type ApplianceID string

// Integrations register appliances with this marker appended to the
// description; the wire identifier drops it.
const descriptionMarker = " via Home Assistant"

// EntityApplianceID derives the deletion identifier for an
// entities-sourced record.
func EntityApplianceID(prefix, description string) (ApplianceID, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("delete prefix is required to derive appliance ids")
	}
	if description == "" {
		return "", fmt.Errorf("empty device description")
	}
	normalized := strings.ReplaceAll(description, descriptionMarker, "")
	normalized = strings.ReplaceAll(normalized, ".", "#")
	normalized = strings.ToLower(normalized)
	if normalized == "" {
		return "", fmt.Errorf("device description %q normalizes to nothing", description)
	}
	return ApplianceID(prefix + "==_" + normalized), nil
}

// PathSegment renders the identifier the way deletion URLs carry it:
// path-escaped, with "=" escaped too, reproducing the %3D%3D_ form
// seen in captures.
func (id ApplianceID) PathSegment() string {
	return strings.ReplaceAll(url.PathEscape(string(id)), "=", "%3D")
}

// Device is one appliance registration returned by enumeration.
type Device struct {
	ID           ApplianceID `json:"applianceId"`
	EntityID     string      `json:"entityId,omitempty"`
	Name         string      `json:"name,omitempty"`
	Description  string      `json:"description,omitempty"`
	Manufacturer string      `json:"manufacturer,omitempty"`
	Source       Source      `json:"source"`
}

// MatchesFilter reports whether the device matches the operator's
// filter text. Entities listings carry the integration's signature in
// the description, endpoints listings in the manufacturer name.
func (d Device) MatchesFilter(filter string) bool {
	if filter == "" {
		return true
	}
	if d.Source == SourceEndpoints {
		return strings.Contains(d.Manufacturer, filter)
	}
	return strings.Contains(d.Description, filter)
}

// Enumeration is the parsed result of one listing call. Raw is the
// payload as received, kept around for audit snapshots.
type Enumeration struct {
	Source  Source
	Devices []Device
	Raw     []byte
}

type entityRecord struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// ParseEntities extracts devices from an entities listing payload.
// Malformed records fail the whole parse rather than being carried
// into the delete loop.
func ParseEntities(prefix string, payload []byte) ([]Device, error) {
	var records []entityRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode entities response: %w", err)
	}

	devices := make([]Device, 0, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("entities record %d: missing id", i)
		}
		if rec.Description == "" {
			return nil, fmt.Errorf("entities record %d (%s): missing description", i, rec.ID)
		}
		id, err := EntityApplianceID(prefix, rec.Description)
		if err != nil {
			return nil, fmt.Errorf("entities record %d (%s): %w", i, rec.ID, err)
		}
		devices = append(devices, Device{
			ID:          id,
			EntityID:    rec.ID,
			Name:        rec.DisplayName,
			Description: rec.Description,
			Source:      SourceEntities,
		})
	}
	return devices, nil
}
