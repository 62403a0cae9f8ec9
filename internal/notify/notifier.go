// Package notify defines the notification interface and implementations
// for operational alert delivery.
package notify

import (
	"context"
)

// Severity classifies an alert.
type Severity string

// Alert severities.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityResolved Severity = "resolved"
)

// Field is a named value rendered alongside an alert.
type Field struct {
	Name  string
	Value string
}

// Alert is an operational event worth a human's attention, such as a
// token scope stuck in backoff or the upstream quota running low.
type Alert struct {
	Key         string // groups firing and resolved alerts for one condition
	Title       string
	Description string
	Severity    Severity
	Fields      []Field
}

// Notifier defines the interface for sending operational alerts.
type Notifier interface {
	SendAlert(ctx context.Context, alert *Alert) error
}
