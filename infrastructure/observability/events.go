package observability

import (
	"context"

	"go.uber.org/zap"

	"futuremap/domain/events"
)

// EventRecorder turns committed domain events into log lines and metrics.
// It implements ports.EventPublisher.
type EventRecorder struct {
	logger    *zap.Logger
	collector *Collector
}

// NewEventRecorder creates a new EventRecorder. collector may be nil.
func NewEventRecorder(logger *zap.Logger, collector *Collector) *EventRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRecorder{logger: logger, collector: collector}
}

// Publish records each event in order
func (r *EventRecorder) Publish(ctx context.Context, evts []events.DomainEvent) {
	for _, evt := range evts {
		r.logger.Debug("Domain event",
			zap.String("type", evt.GetEventType()),
			zap.String("canvasID", evt.GetAggregateID()),
			zap.Time("at", evt.GetTimestamp()),
		)
		if r.collector != nil {
			r.count(evt)
		}
	}
}

func (r *EventRecorder) count(evt events.DomainEvent) {
	switch e := evt.(type) {
	case events.CardPlaced:
		r.collector.CardsPlaced.WithLabelValues(e.CardType).Inc()
	case events.CardMoved:
		r.collector.CardsMoved.Inc()
	case events.CardRemoved:
		r.collector.CardsRemoved.Inc()
	case events.CardsConnected:
		origin := "manual"
		if e.Auto {
			origin = "auto"
		}
		r.collector.Connections.WithLabelValues(origin).Inc()
	case events.CanvasCreated:
		r.collector.CanvasesCreated.Inc()
	case events.CanvasRemoved:
		r.collector.CanvasesRemoved.Inc()
	case events.CanvasRestored:
		r.collector.CanvasesRestored.Inc()
	case events.ConnectModeChanged:
		r.collector.ConnectModeChange.Inc()
	}
}
