package alexa

import (
	"encoding/json"
	"fmt"
)

// customerSmartHomeQuery is the query the app issues for the Devices
// tab, captured verbatim. Pagination is disabled so one response holds
// the whole account.
const customerSmartHomeQuery = `
        query CustomerSmartHome {
            endpoints(endpointsQueryParams: { paginationParams: { disablePagination: true } }) {
                items {
                    friendlyName
                    legacyAppliance {
                        applianceId
                        mergedApplianceIds
                        connectedVia
                        applianceKey
                        appliancePairs
                        modelName
                        friendlyDescription
                        version
                        friendlyName
                        manufacturerName
                    }
                }
            }
        }
        `

type graphqlRequest struct {
	Query string `json:"query"`
}

type endpointsEnvelope struct {
	Data struct {
		Endpoints struct {
			Items []struct {
				FriendlyName    string `json:"friendlyName"`
				LegacyAppliance struct {
					ApplianceID         string `json:"applianceId"`
					ApplianceKey        string `json:"applianceKey"`
					FriendlyDescription string `json:"friendlyDescription"`
					ManufacturerName    string `json:"manufacturerName"`
				} `json:"legacyAppliance"`
			} `json:"items"`
		} `json:"endpoints"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ParseEndpoints extracts devices from a CustomerSmartHome response.
func ParseEndpoints(payload []byte) ([]Device, error) {
	var envelope endpointsEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode endpoints response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("endpoints query rejected: %s", envelope.Errors[0].Message)
	}
	items := envelope.Data.Endpoints.Items
	if items == nil {
		return nil, fmt.Errorf("endpoints response missing data.endpoints.items")
	}

	devices := make([]Device, 0, len(items))
	for i, item := range items {
		appliance := item.LegacyAppliance
		if appliance.ApplianceID == "" {
			return nil, fmt.Errorf("endpoints record %d (%s): missing applianceId", i, item.FriendlyName)
		}
		devices = append(devices, Device{
			ID:           ApplianceID(appliance.ApplianceID),
			EntityID:     appliance.ApplianceKey,
			Name:         item.FriendlyName,
			Description:  appliance.FriendlyDescription,
			Manufacturer: appliance.ManufacturerName,
			Source:       SourceEndpoints,
		})
	}
	return devices, nil
}
