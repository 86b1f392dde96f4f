package usecase

import "github.com/arzdex/arzdex/internal/core/logger"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// AudienceAll addresses a notification to every user.
const AudienceAll = "all"

// NotificationSink receives one event per successful state transition.
// Delivery is owned by the presentation layer; the engine never waits on
// it and a sink failure never rolls back a settlement.
type NotificationSink interface {
	Notify(audience, title, message string, severity Severity) error
}

func (e *Exchange) notify(audience, title, message string, severity Severity) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(audience, title, message, severity); err != nil {
		e.log.Warn("Notification sink failed",
			logger.StringField("audience", audience),
			logger.StringField("title", title),
			logger.ErrorField("error", err))
	}
}
