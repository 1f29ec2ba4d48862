package gocommand

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

// QueueResolverKey names the registry resolver installed by MirrorToQueue.
const QueueResolverKey = "checkout.queue"

// ValidateMessageContract requires a non-empty Type() and runs Validate()
// when the message has one.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	return requireMessageType(msg)
}

func requireMessageType(msg any) error {
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: %T must implement Type() string", msg)
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: %T has an empty message type", msg)
	}
	return nil
}

// RegistryAdapter binds checkout command and query handlers to a go-command
// registry and to the global dispatcher.
type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) ready() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return nil
}

// MirrorToQueue copies every bound handler into queueRegistry when the
// registry is initialized, so go-job workers can run checkout messages.
func (a *RegistryAdapter) MirrorToQueue(queueRegistry *jobqueuecommand.Registry) error {
	if err := a.ready(); err != nil {
		return err
	}
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	if a.registry.HasResolver(QueueResolverKey) {
		return fmt.Errorf("gocommand: queue mirror is already configured")
	}
	return a.registry.AddResolver(QueueResolverKey, jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) Initialize() error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.registry.Initialize()
}

// BindStatusChangeHandler subscribes handler to the messages published by
// StatusChangeDispatcher.
func (a *RegistryAdapter) BindStatusChangeHandler(subs *Subscriptions, handler command.CommandFunc[OrderStatusChangedMessage]) error {
	if handler == nil {
		return fmt.Errorf("gocommand: status change handler is required")
	}
	return BindCommand[OrderStatusChangedMessage](a, subs, handler)
}

// Subscriptions collects what BindCommand and BindQuery subscribed.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, sub := range s {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}

// BindCommand registers cmd and subscribes it on the global dispatcher. The
// subscription is appended to subs when subs is not nil.
func BindCommand[T any](a *RegistryAdapter, subs *Subscriptions, cmd command.Commander[T], runnerOpts ...runner.Option) error {
	if err := a.ready(); err != nil {
		return err
	}
	if cmd == nil {
		return fmt.Errorf("gocommand: command is required")
	}
	var msg T
	if err := requireMessageType(msg); err != nil {
		return err
	}
	sub := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	return a.keep(subs, sub, cmd)
}

// BindQuery is BindCommand for query handlers.
func BindQuery[T any, R any](a *RegistryAdapter, subs *Subscriptions, qry command.Querier[T, R], runnerOpts ...runner.Option) error {
	if err := a.ready(); err != nil {
		return err
	}
	if qry == nil {
		return fmt.Errorf("gocommand: query is required")
	}
	var msg T
	if err := requireMessageType(msg); err != nil {
		return err
	}
	sub := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	return a.keep(subs, sub, qry)
}

func (a *RegistryAdapter) keep(subs *Subscriptions, sub commanddispatcher.Subscription, handler any) error {
	if err := a.registry.RegisterCommand(handler); err != nil {
		if sub != nil {
			sub.Unsubscribe()
		}
		return err
	}
	if subs != nil {
		*subs = append(*subs, sub)
	}
	return nil
}
