package query

import (
	"github.com/goliatone/go-checkout/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[ServiceHealthMessage, core.ServiceHealth]             = (*ServiceHealthQuery)(nil)
	_ gocmd.Querier[ServiceStatusMessage, core.ServiceStatusReport]       = (*ServiceStatusQuery)(nil)
	_ gocmd.Querier[ValidateServicesMessage, core.ServiceValidation]      = (*ValidateServicesQuery)(nil)
	_ gocmd.Querier[ConfigSummaryMessage, core.ConfigSummary]             = (*ConfigSummaryQuery)(nil)
	_ gocmd.Querier[ProductionChecklistMessage, core.ProductionChecklist] = (*ProductionChecklistQuery)(nil)
)
