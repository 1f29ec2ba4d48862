// Package webhooks verifies signed payment gateway callbacks.
//
// Signatures follow the timestamped scheme `t=<unix>,v1=<hex hmac>` where the
// HMAC-SHA256 is computed over "<unix>.<payload>". Deliveries older than the
// tolerance window are rejected to stop replays.
package webhooks
