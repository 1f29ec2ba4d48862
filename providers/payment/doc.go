// Package payment implements the checkout payment engines.
//
// DemoService simulates a gateway with configurable latency and failure
// rates; ProductionService gates a real Gateway behind credential checks.
// Both validate card input with the same rules, so a method that is valid in
// demo mode is valid in production mode and vice versa.
package payment
