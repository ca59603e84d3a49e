package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mkrupp/homecase-anime/internal/domain"
	"github.com/mkrupp/homecase-anime/internal/infra/logging"
)

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message,omitempty"`
	Path      string            `json:"path"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	//nolint:wrapcheck
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse with the given status and message.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeErrorResponse(w, r, ErrorResponse{
		Status:  status,
		Message: message,
	})
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, resp ErrorResponse) {
	resp.Timestamp = time.Now().UTC()
	resp.Error = http.StatusText(resp.Status)
	resp.Path = r.URL.Path

	_ = WriteJSON(w, resp.Status, resp)
}

// StatusFor maps a service error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAnimeNotFound), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError translates err into an ErrorResponse. Server errors are
// logged and their details withheld from the client.
func WriteServiceError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	resp := ErrorResponse{Status: StatusFor(err)}

	switch resp.Status {
	case http.StatusInternalServerError:
		log.ErrorContext(r.Context(), "internal error", "error", err)
	case http.StatusBadRequest:
		resp.Message = "Validation failed"
		resp.Fields = domain.ValidationFields(err)

		if len(resp.Fields) == 1 {
			for _, msg := range resp.Fields {
				resp.Message = msg
			}
		}
	default:
		resp.Message = rootMessage(err)
	}

	writeErrorResponse(w, r, resp)
}

// rootMessage returns the message of the domain sentinel in err, avoiding
// leaking wrapped implementation details.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrAnimeNotFound,
		domain.ErrUserNotFound,
		domain.ErrUserAlreadyExists,
		domain.ErrInvalidCredentials,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}

	return ""
}
