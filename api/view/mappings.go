package view

import (
	"TmhnaDash/api/constants"
	"TmhnaDash/api/model"
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
	"TmhnaDash/internal/notification"
)

// AccountMappings renders the editable account table. Imported marks rows
// that came from a file and are not saved yet.
func AccountMappings(ms []model.AccountMapping, imported bool) Fragment {
	return render(pane.AccountMappings, "account-mappings", map[string]any{
		"Rows":     ms,
		"Empty":    constants.MsgNoAccountMappings,
		"Imported": imported,
	})
}

func CostCenterMappings(ms []model.CostCenterMapping, imported bool) Fragment {
	return render(pane.CostCenterMappings, "cost-center-mappings", map[string]any{
		"Rows":     ms,
		"Empty":    constants.MsgNoCostCenterMappings,
		"Imported": imported,
	})
}

func VendorRules(rules model.VendorRules) Fragment {
	return render(pane.VendorRules, "vendor-rules", rules)
}

type mappingRequestView struct {
	Brand     string
	Requester string
	Blocking  int
	At        string
}

// MappingRequests lists what brand controllers asked corporate to map,
// newest first as the store returns them.
func MappingRequests(reqs []notification.MappingRequest) Fragment {
	if len(reqs) == 0 {
		return Message(pane.MappingRequests, constants.MsgNoMappingRequests)
	}
	rows := make([]mappingRequestView, len(reqs))
	for i, r := range reqs {
		rows[i] = mappingRequestView{
			Brand:     brandDisplay(r.Brand),
			Requester: role.Parse(r.Role).Label(),
			Blocking:  r.BlockingCount,
			At:        r.CreatedAt.Format(constants.DateTimeFormat),
		}
	}
	return render(pane.MappingRequests, "mapping-requests", rows)
}
