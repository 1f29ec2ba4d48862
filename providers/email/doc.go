// Package email provides the demo, SendGrid and SES implementations of
// core.EmailService. The demo provider keeps an in-memory outbox; SendGrid
// sends through the transport REST adapter; SES validates its settings but has
// no client wired and reports itself as not configured on send.
package email
