package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"rental-quotes/repository"
	"rental-quotes/service"
	"rental-quotes/submission"
)

// ErrorResponse is the body of every failed request
// Example: {"error": "quote request not found"}
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeError logs err under op and maps it to a status code
func writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	log.Printf("❌ %s: %v (status %d)", op, err, status)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = fmt.Sprintf("%s failed", op)
	}
	writeErrorMessage(w, status, message)
}

func statusFor(err error) int {
	var validationErr *service.ValidationError
	var detailsErr *submission.ValidationError
	var externalErr *service.ExternalServiceError

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &detailsErr),
		errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidStatus),
		errors.Is(err, service.ErrConfirmationRequired),
		errors.Is(err, submission.ErrEmptyCart),
		errors.Is(err, submission.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrQuoteNotFound),
		errors.Is(err, repository.ErrEquipmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrQuoteDeleted),
		errors.Is(err, repository.ErrQuoteNotDeleted),
		errors.Is(err, submission.ErrSubmissionInProgress):
		return http.StatusConflict
	case errors.As(err, &externalErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads the request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Printf("❌ %s: Failed to decode request body: %v", op, err)
		writeErrorMessage(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// decodeOptionalJSON decodes v when the request carries a body. An empty body,
// chunked or not, leaves v untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, op string, v interface{}) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("❌ %s: Failed to decode request body: %v", op, err)
		writeErrorMessage(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// closeLogged closes c and logs the error, for deferred cleanup
func closeLogged(op string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("⚠️ %s: Failed to close: %v", op, err)
	}
}

// pathID parses the {id} path value
func pathID(w http.ResponseWriter, r *http.Request, op string) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		log.Printf("❌ %s: Invalid id: %q", op, raw)
		writeErrorMessage(w, http.StatusBadRequest, "invalid id parameter")
		return 0, false
	}
	return id, true
}
