package clients

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/antonkh/paperdesk/internal/domain"
)

const maxErrorBody = 4 << 10

// newFetchError converts a non-success response into a domain.FetchError,
// propagating a provider-supplied message when the body carries one. HTTP 402
// and 429 mark quota exhaustion.
func newFetchError(provider string, resp *http.Response) error {
	fe := &domain.FetchError{
		Provider:    provider,
		Status:      resp.StatusCode,
		RateLimited: resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusTooManyRequests,
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Error  string `json:"error"`
		Status struct {
			ErrorMessage string `json:"error_message"`
		} `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			fe.Message = payload.Error
		case payload.Status.ErrorMessage != "":
			fe.Message = payload.Status.ErrorMessage
		}
	}

	if fe.Message == "" && fe.RateLimited {
		fe.Message = "API limit reached. Please wait before next request."
	}
	return fe
}
