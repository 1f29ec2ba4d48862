package checkout

import (
	"fmt"

	"github.com/goliatone/go-checkout/adapters/gocommand"
	checkoutcommand "github.com/goliatone/go-checkout/command"
	checkoutquery "github.com/goliatone/go-checkout/query"
)

// CommandQueryService is what the facade needs from the service layer;
// *ServiceFactory satisfies it.
type CommandQueryService interface {
	checkoutcommand.PaymentServiceProvider
	checkoutcommand.ServiceResetter
	checkoutquery.ServiceInspector
	checkoutquery.ConfigInspector
}

type Commands struct {
	ProcessPayment   *checkoutcommand.ProcessPaymentCommand
	StartAutoAdvance *checkoutcommand.StartAutoAdvanceCommand
	StopAutoAdvance  *checkoutcommand.StopAutoAdvanceCommand
	ResetServices    *checkoutcommand.ResetServicesCommand
}

type Queries struct {
	ServiceHealth       *checkoutquery.ServiceHealthQuery
	ServiceStatus       *checkoutquery.ServiceStatusQuery
	ValidateServices    *checkoutquery.ValidateServicesQuery
	ConfigSummary       *checkoutquery.ConfigSummaryQuery
	ProductionChecklist *checkoutquery.ProductionChecklistQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	configResetter checkoutcommand.ConfigResetter
}

// WithConfigResetter lets ResetServices also drop the cached configuration
// when the message asks for it.
func WithConfigResetter(resetter checkoutcommand.ConfigResetter) FacadeOption {
	return func(options *facadeOptions) {
		options.configResetter = resetter
	}
}

func NewFacade(service CommandQueryService, advancer checkoutcommand.AutoAdvancer, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("checkout: command/query service is required")
	}
	if advancer == nil {
		return nil, fmt.Errorf("checkout: auto advancer is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		ProcessPayment:   checkoutcommand.NewProcessPaymentCommand(service),
		StartAutoAdvance: checkoutcommand.NewStartAutoAdvanceCommand(advancer),
		StopAutoAdvance:  checkoutcommand.NewStopAutoAdvanceCommand(advancer),
		ResetServices:    checkoutcommand.NewResetServicesCommand(service, cfg.configResetter),
	}
	facade.queries = Queries{
		ServiceHealth:       checkoutquery.NewServiceHealthQuery(service),
		ServiceStatus:       checkoutquery.NewServiceStatusQuery(service),
		ValidateServices:    checkoutquery.NewValidateServicesQuery(service),
		ConfigSummary:       checkoutquery.NewConfigSummaryQuery(service),
		ProductionChecklist: checkoutquery.NewProductionChecklistQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// Register binds every command and query to the registry and the global
// dispatcher. On failure the subscriptions made so far are released.
func (f *Facade) Register(adapter *gocommand.RegistryAdapter) (gocommand.Subscriptions, error) {
	if f == nil {
		return nil, fmt.Errorf("checkout: facade is nil")
	}
	var subs gocommand.Subscriptions
	binds := []func() error{
		func() error { return gocommand.BindCommand(adapter, &subs, f.commands.ProcessPayment) },
		func() error { return gocommand.BindCommand(adapter, &subs, f.commands.StartAutoAdvance) },
		func() error { return gocommand.BindCommand(adapter, &subs, f.commands.StopAutoAdvance) },
		func() error { return gocommand.BindCommand(adapter, &subs, f.commands.ResetServices) },
		func() error { return gocommand.BindQuery(adapter, &subs, f.queries.ServiceHealth) },
		func() error { return gocommand.BindQuery(adapter, &subs, f.queries.ServiceStatus) },
		func() error { return gocommand.BindQuery(adapter, &subs, f.queries.ValidateServices) },
		func() error { return gocommand.BindQuery(adapter, &subs, f.queries.ConfigSummary) },
		func() error { return gocommand.BindQuery(adapter, &subs, f.queries.ProductionChecklist) },
	}
	for _, bind := range binds {
		if err := bind(); err != nil {
			subs.Unsubscribe()
			return nil, err
		}
	}
	return subs, nil
}
