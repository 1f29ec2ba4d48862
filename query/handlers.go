package query

import (
	"context"

	"github.com/goliatone/go-checkout/core"
)

// ServiceInspector is the read side of the service factory.
type ServiceInspector interface {
	CheckServiceHealth(ctx context.Context) core.ServiceHealth
	GetServiceStatus(ctx context.Context) (core.ServiceStatusReport, error)
	ValidateServices(ctx context.Context) core.ServiceValidation
}

type ConfigInspector interface {
	GetConfigSummary(ctx context.Context) (core.ConfigSummary, error)
	GetProductionChecklist(ctx context.Context) (core.ProductionChecklist, error)
}

// ServiceHealthQuery never fails once wired; construction problems are
// reported inside the health map.
type ServiceHealthQuery struct {
	inspector ServiceInspector
}

func NewServiceHealthQuery(inspector ServiceInspector) *ServiceHealthQuery {
	return &ServiceHealthQuery{inspector: inspector}
}

func (q *ServiceHealthQuery) Query(ctx context.Context, _ ServiceHealthMessage) (core.ServiceHealth, error) {
	if q == nil || q.inspector == nil {
		return core.ServiceHealth{}, queryDependencyError("query: service inspector is required")
	}
	return q.inspector.CheckServiceHealth(ctx), nil
}

type ServiceStatusQuery struct {
	inspector ServiceInspector
}

func NewServiceStatusQuery(inspector ServiceInspector) *ServiceStatusQuery {
	return &ServiceStatusQuery{inspector: inspector}
}

func (q *ServiceStatusQuery) Query(ctx context.Context, _ ServiceStatusMessage) (core.ServiceStatusReport, error) {
	if q == nil || q.inspector == nil {
		return core.ServiceStatusReport{}, queryDependencyError("query: service inspector is required")
	}
	return q.inspector.GetServiceStatus(ctx)
}

type ValidateServicesQuery struct {
	inspector ServiceInspector
}

func NewValidateServicesQuery(inspector ServiceInspector) *ValidateServicesQuery {
	return &ValidateServicesQuery{inspector: inspector}
}

func (q *ValidateServicesQuery) Query(ctx context.Context, _ ValidateServicesMessage) (core.ServiceValidation, error) {
	if q == nil || q.inspector == nil {
		return core.ServiceValidation{}, queryDependencyError("query: service inspector is required")
	}
	return q.inspector.ValidateServices(ctx), nil
}

type ConfigSummaryQuery struct {
	inspector ConfigInspector
}

func NewConfigSummaryQuery(inspector ConfigInspector) *ConfigSummaryQuery {
	return &ConfigSummaryQuery{inspector: inspector}
}

func (q *ConfigSummaryQuery) Query(ctx context.Context, _ ConfigSummaryMessage) (core.ConfigSummary, error) {
	if q == nil || q.inspector == nil {
		return core.ConfigSummary{}, queryDependencyError("query: config inspector is required")
	}
	return q.inspector.GetConfigSummary(ctx)
}

type ProductionChecklistQuery struct {
	inspector ConfigInspector
}

func NewProductionChecklistQuery(inspector ConfigInspector) *ProductionChecklistQuery {
	return &ProductionChecklistQuery{inspector: inspector}
}

func (q *ProductionChecklistQuery) Query(ctx context.Context, _ ProductionChecklistMessage) (core.ProductionChecklist, error) {
	if q == nil || q.inspector == nil {
		return core.ProductionChecklist{}, queryDependencyError("query: config inspector is required")
	}
	return q.inspector.GetProductionChecklist(ctx)
}
