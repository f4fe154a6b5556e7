package alexa

import (
	"strings"
	"testing"
)

func TestEntityApplianceID(t *testing.T) {
	id, err := EntityApplianceID("SKILL_abc", "Kitchen Light via Home Assistant")
	if err != nil {
		t.Fatalf("EntityApplianceID: %v", err)
	}
	if id != "SKILL_abc==_kitchen light" {
		t.Fatalf("unexpected id: %s", id)
	}

	id, err = EntityApplianceID("SKILL_abc", "Fan v2.1 via Home Assistant")
	if err != nil {
		t.Fatalf("EntityApplianceID: %v", err)
	}
	if id != "SKILL_abc==_fan v2#1" {
		t.Fatalf("expected dots mapped to hashes, got %s", id)
	}

	id, err = EntityApplianceID("SKILL_abc", "Garage Door")
	if err != nil {
		t.Fatalf("EntityApplianceID: %v", err)
	}
	if id != "SKILL_abc==_garage door" {
		t.Fatalf("unexpected id without marker: %s", id)
	}

	if _, err := EntityApplianceID("", "Garage Door"); err == nil {
		t.Fatalf("expected error for missing prefix")
	}
	if _, err := EntityApplianceID("SKILL_abc", ""); err == nil {
		t.Fatalf("expected error for empty description")
	}
	if _, err := EntityApplianceID("SKILL_abc", " via Home Assistant"); err == nil {
		t.Fatalf("expected error for description that is only the marker")
	}
}

func TestPathSegment(t *testing.T) {
	if got := ApplianceID("SKILL_abc123").PathSegment(); got != "SKILL_abc123" {
		t.Fatalf("plain ids must pass through unchanged, got %s", got)
	}
	if got := ApplianceID("SKILL_abc==_kitchen light").PathSegment(); got != "SKILL_abc%3D%3D_kitchen%20light" {
		t.Fatalf("unexpected escaped segment: %s", got)
	}
	if got := ApplianceID("SKILL_abc==_fan v2#1").PathSegment(); got != "SKILL_abc%3D%3D_fan%20v2%231" {
		t.Fatalf("unexpected escaped segment: %s", got)
	}
}

func TestMatchesFilter(t *testing.T) {
	entity := Device{Source: SourceEntities, Description: "Kitchen Light via Home Assistant", Manufacturer: ""}
	endpoint := Device{Source: SourceEndpoints, Description: "Kitchen Light via Home Assistant", Manufacturer: "Home Assistant"}

	if !entity.MatchesFilter("") || !endpoint.MatchesFilter("") {
		t.Fatalf("empty filter must match everything")
	}
	if !entity.MatchesFilter("Home Assistant") {
		t.Fatalf("entity should match on description")
	}
	if entity.MatchesFilter("home assistant") {
		t.Fatalf("filter match is case sensitive")
	}
	if !endpoint.MatchesFilter("Home Assistant") {
		t.Fatalf("endpoint should match on manufacturer")
	}
	if (Device{Source: SourceEndpoints, Description: "Home Assistant device", Manufacturer: "Amazon"}).MatchesFilter("Home Assistant") {
		t.Fatalf("endpoint records match on manufacturer, not description")
	}
}

func TestParseEntitiesRejectsMalformedRecords(t *testing.T) {
	if _, err := ParseEntities("SKILL_abc", []byte(`[{"displayName":"x","description":"y"}]`)); err == nil || !strings.Contains(err.Error(), "missing id") {
		t.Fatalf("expected missing id error, got %v", err)
	}
	if _, err := ParseEntities("SKILL_abc", []byte(`[{"id":"ent-1","displayName":"x"}]`)); err == nil || !strings.Contains(err.Error(), "missing description") {
		t.Fatalf("expected missing description error, got %v", err)
	}
	if _, err := ParseEntities("", []byte(`[{"id":"ent-1","description":"y"}]`)); err == nil {
		t.Fatalf("expected error when prefix is not configured")
	}
}

func TestParseEntitiesOrderPreserved(t *testing.T) {
	devices, err := ParseEntities("SKILL_abc", []byte(`[
		{"id":"ent-3","displayName":"C","description":"c"},
		{"id":"ent-1","displayName":"A","description":"a"},
		{"id":"ent-2","displayName":"B","description":"b"}
	]`))
	if err != nil {
		t.Fatalf("ParseEntities: %v", err)
	}
	if len(devices) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(devices))
	}
	if devices[0].EntityID != "ent-3" || devices[1].EntityID != "ent-1" || devices[2].EntityID != "ent-2" {
		t.Fatalf("response order not preserved: %+v", devices)
	}
}

func TestParseEndpoints(t *testing.T) {
	devices, err := ParseEndpoints([]byte(`{"data":{"endpoints":{"items":[
		{"friendlyName":"Lamp","legacyAppliance":{"applianceId":"id-1","applianceKey":"key-1","friendlyDescription":"Lamp via Home Assistant","manufacturerName":"Home Assistant"}}
	]}}}`))
	if err != nil {
		t.Fatalf("ParseEndpoints: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(devices))
	}
	dev := devices[0]
	if dev.ID != "id-1" || dev.EntityID != "key-1" || dev.Name != "Lamp" || dev.Manufacturer != "Home Assistant" {
		t.Fatalf("unexpected device: %+v", dev)
	}

	if _, err := ParseEndpoints([]byte(`{"data":{"endpoints":{"items":[]}}}`)); err != nil {
		t.Fatalf("empty items should parse cleanly: %v", err)
	}
	if _, err := ParseEndpoints([]byte(`{"data":{}}`)); err == nil {
		t.Fatalf("expected error when items are absent")
	}
	_, err = ParseEndpoints([]byte(`{"errors":[{"message":"not authorized"}]}`))
	if err == nil || !strings.Contains(err.Error(), "not authorized") {
		t.Fatalf("expected query rejection to surface the message, got %v", err)
	}
	if _, err := ParseEndpoints([]byte(`{"data":{"endpoints":{"items":[{"friendlyName":"x","legacyAppliance":{}}]}}}`)); err == nil {
		t.Fatalf("expected error for record without applianceId")
	}
}
