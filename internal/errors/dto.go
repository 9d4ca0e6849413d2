package errors

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Display string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewErrorResponse builds the API error body from the hints and safe details of err
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Display: DisplayMessage(err),
			Details: SafeDetails(err),
		},
	}
}

// SafeDetails collects the details attached with WithReportableDetails
func SafeDetails(err error) map[string]any {
	details := make(map[string]any)

	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			jsonStr, ok := strings.CutPrefix(payload, "__json__:")
			if !ok {
				continue
			}
			var jsonDetails map[string]any
			if err := json.Unmarshal([]byte(jsonStr), &jsonDetails); err == nil {
				for k, v := range jsonDetails {
					details[k] = v
				}
			}
		}
	}

	if len(details) == 0 {
		return nil
	}
	return details
}
