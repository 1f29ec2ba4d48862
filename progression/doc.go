// Package progression advances demo orders through the fulfilment statuses on
// a timer. Each order has at most one persisted schedule holding its next wake
// time; a single polling loop fires due schedules, asks the StatusUpdater to
// apply the transition, notifies observers and re-arms until DELIVERED.
package progression
