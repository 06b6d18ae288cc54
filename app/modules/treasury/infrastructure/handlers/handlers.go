package treasuryhandlers

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	treasuryservice "github.com/osusu-club/osusu-service/app/modules/treasury/application"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
	"github.com/osusu-club/osusu-service/internal/results"
)

// TreasuryHandlers implements the Handlers interface.
type TreasuryHandlers struct {
	service treasuryservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewTreasuryHandlers creates a new TreasuryHandlers instance.
func NewTreasuryHandlers(
	service treasuryservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &TreasuryHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// mapOperationResult converts a service OperationResult to handler Results.
func mapOperationResult[S any, F any](
	result results.OperationResult[S, F],
	successTopic, failureTopic string,
) []handlerwrapper.Result {
	handlerResults := result.MapToHandlerResults(successTopic, failureTopic)

	wrapperResults := make([]handlerwrapper.Result, len(handlerResults))
	for i, hr := range handlerResults {
		wrapperResults[i] = handlerwrapper.Result{
			Topic:    hr.Topic,
			Payload:  hr.Payload,
			Metadata: hr.Metadata,
		}
	}

	return wrapperResults
}
