package clubrouter

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/trace"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	clubhandlers "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/handlers"
	"github.com/osusu-club/osusu-service/internal/eventbus"
	"github.com/osusu-club/osusu-service/internal/handlerwrapper"
	"github.com/osusu-club/osusu-service/internal/utils"
)

// ClubRouter handles Watermill handler registration for club events.
type ClubRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	helper     utils.Helpers
	tracer     trace.Tracer
}

// NewClubRouter creates a new ClubRouter.
func NewClubRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	helper utils.Helpers,
	tracer trace.Tracer,
) *ClubRouter {
	return &ClubRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		helper:     helper,
		tracer:     tracer,
	}
}

// Configure sets up middleware and registers the handlers. The module owns its
// router instance, so the middleware chain applies to club handlers only.
func (r *ClubRouter) Configure(_ context.Context, handlers clubhandlers.Handlers) error {
	r.router.AddMiddleware(
		middleware.CorrelationID,
		utils.NewMiddlewareHelper().CommonMetadataMiddleware("club"),
		utils.NewMiddlewareHelper().RoutingMetadataMiddleware(),
		middleware.Recoverer,
	)

	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	helper     utils.Helpers
}

// registerHandlers wires NATS topics to handler methods.
func (r *ClubRouter) registerHandlers(handlers clubhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		helper:     r.helper,
	}

	registerHandler(deps, clubevents.ClubCreateRequestedV1, handlers.HandleCreateClubRequest)
	registerHandler(deps, clubevents.ClubJoinRequestedV1, handlers.HandleJoinClubRequest)
	registerHandler(deps, clubevents.ClubContributionRequestedV1, handlers.HandleContributionRequest)
	registerHandler(deps, clubevents.ClubWithdrawalOpenRequestedV1, handlers.HandleOpenWithdrawalsRequest)
	registerHandler(deps, clubevents.ClubWithdrawRequestedV1, handlers.HandleWithdrawRequest)
	registerHandler(deps, clubevents.ClubCloseRequestedV1, handlers.HandleCloseClubRequest)
	registerHandler(deps, clubevents.ClubGetRequestedV1, handlers.HandleGetClubRequest)

	r.logger.Info("Club module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "club-handler." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"", // Watermill reads topic from message metadata when empty
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.helper,
			nil,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *ClubRouter) Close() error {
	return r.router.Close()
}
