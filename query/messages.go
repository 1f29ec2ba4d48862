package query

const (
	TypeServiceHealth       = "checkout.query.services.health"
	TypeServiceStatus       = "checkout.query.services.status"
	TypeValidateServices    = "checkout.query.services.validate"
	TypeConfigSummary       = "checkout.query.config.summary"
	TypeProductionChecklist = "checkout.query.config.production_checklist"
)

type ServiceHealthMessage struct{}

func (ServiceHealthMessage) Type() string { return TypeServiceHealth }

type ServiceStatusMessage struct{}

func (ServiceStatusMessage) Type() string { return TypeServiceStatus }

type ValidateServicesMessage struct{}

func (ValidateServicesMessage) Type() string { return TypeValidateServices }

type ConfigSummaryMessage struct{}

func (ConfigSummaryMessage) Type() string { return TypeConfigSummary }

type ProductionChecklistMessage struct{}

func (ProductionChecklistMessage) Type() string { return TypeProductionChecklist }
