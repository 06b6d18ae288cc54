package results

// OperationResult splits a service outcome three ways: domain success, domain
// failure (a guard rejected the request; publish the failure payload and ack),
// and infrastructure error (returned separately; the message may be retried).
// Exactly one of Success or Failure is set on a non-error outcome.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
	Error   error
}

// SuccessResult wraps a success payload.
func SuccessResult[S any, F any](success S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &success}
}

// FailureResult wraps a domain failure payload.
func FailureResult[S any, F any](failure F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &failure}
}

// FailureWithError wraps a failure payload together with the error that
// produced it, for callers that want both the publishable payload and the
// underlying cause.
func FailureWithError[S any, F any](failure F, err error) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &failure, Error: err}
}

func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}

// HandlerResult pairs a publishable payload with the topic it belongs on.
type HandlerResult struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// MapToHandlerResults routes the outcome to the success or failure topic. An
// empty result maps to no messages.
func (r OperationResult[S, F]) MapToHandlerResults(successTopic, failureTopic string) []HandlerResult {
	switch {
	case r.Success != nil:
		return []HandlerResult{{Topic: successTopic, Payload: r.Success}}
	case r.Failure != nil:
		return []HandlerResult{{Topic: failureTopic, Payload: r.Failure}}
	default:
		return nil
	}
}
