package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/organarr/organarr/apiclient"
)

// ErrNoChoices indicates the model answered without any completion.
var ErrNoChoices = errors.New("model returned no choices")

// classifyError folds go-openai failures into the shared error
// taxonomy so callers handle LLM errors like any other vendor's.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	wrap := func(kind apiclient.Kind, message string, status int) error {
		return &apiclient.Error{
			Kind:       kind,
			Vendor:     vendorName,
			Message:    message,
			StatusCode: status,
			Err:        err,
		}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return wrap(apiclient.KindRateLimit, apiErr.Message, apiErr.HTTPStatusCode)
		case apiErr.HTTPStatusCode == http.StatusUnauthorized,
			apiErr.HTTPStatusCode == http.StatusForbidden:
			return wrap(apiclient.KindAuth, apiErr.Message, apiErr.HTTPStatusCode)
		case apiErr.HTTPStatusCode == http.StatusNotFound:
			return wrap(apiclient.KindNotFound, apiErr.Message, apiErr.HTTPStatusCode)
		case apiErr.HTTPStatusCode >= 500:
			return wrap(apiclient.KindServer, apiErr.Message, apiErr.HTTPStatusCode)
		default:
			return wrap(apiclient.KindRequest, apiErr.Message, apiErr.HTTPStatusCode)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return wrap(apiclient.KindTimeout, "request timed out", 0)
	}

	return wrap(apiclient.KindConnection, "request failed", 0)
}
