package listeners

import (
	"context"

	"go.uber.org/zap"

	"counsel-dispatch/internal/events"
	"counsel-dispatch/pkg/eventbus"
)

// Notifier delivers a dispatch notification to a counselor or a user. Push
// delivery itself is outside this service; the default implementation logs.
type Notifier interface {
	Notify(ctx context.Context, recipientID, message string) error
}

type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) Notifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, recipientID, message string) error {
	n.logger.Info("notification", zap.String("recipientId", recipientID), zap.String("message", message))
	return nil
}

// NotificationListener translates dispatch events into Notifier calls.
type NotificationListener struct {
	notifier Notifier
	logger   *zap.Logger
}

func NewNotificationListener(notifier Notifier, logger *zap.Logger) *NotificationListener {
	return &NotificationListener{notifier: notifier, logger: logger}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe("dispatch.request.created", l.handleRequestCreated)
	bus.Subscribe("dispatch.request.accepted", l.handleRequestAccepted)
	bus.Subscribe("dispatch.request.closed", l.handleRequestClosed)
	l.logger.Info("NotificationListener subscribed to dispatch events")
}

// handleRequestCreated fans the broadcast out to every counselor in the
// snapshot. This is a notify, not an offer: claim priority is decided solely
// by who commits the conditional write first.
func (l *NotificationListener) handleRequestCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.RequestCreatedEvent)
	if !ok {
		return nil
	}
	for _, counselor := range e.Eligible {
		if err := l.notifier.Notify(ctx, counselor.ID, "new counsel request in "+e.Request.Region); err != nil {
			l.logger.Warn("broadcast notify failed",
				zap.String("counselorId", counselor.ID),
				zap.String("requestId", e.Request.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (l *NotificationListener) handleRequestAccepted(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.RequestAcceptedEvent)
	if !ok {
		return nil
	}
	return l.notifier.Notify(ctx, e.Request.UserID, "a counselor accepted your request")
}

func (l *NotificationListener) handleRequestClosed(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.RequestClosedEvent)
	if !ok {
		return nil
	}
	return l.notifier.Notify(ctx, e.Request.UserID, "your request was closed: "+e.Reason)
}
