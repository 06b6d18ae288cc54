package clubhandlers

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	clubservice "github.com/osusu-club/osusu-service/app/modules/club/application"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
	"github.com/osusu-club/osusu-service/internal/results"
)

// ClubHandlers implements the Handlers interface.
type ClubHandlers struct {
	service clubservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewClubHandlers creates a new ClubHandlers instance.
func NewClubHandlers(
	service clubservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &ClubHandlers{
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
