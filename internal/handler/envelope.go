package handler

import (
	"encoding/json"
	"net/http"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/page"
)

// Status message types.
const (
	StatusInfo  = "INFO"
	StatusError = "ERROR"
)

// Pagination describes the page a response carries.
type Pagination struct {
	PageSize    int `json:"pageSize"`
	CurrentPage int `json:"currentPage"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
}

// Status is one message about the request.
type Status struct {
	Message     string `json:"message"`
	MessageType string `json:"messageType"`
	Details     string `json:"details,omitempty"`
}

// Metadata is the envelope header.
type Metadata struct {
	Pagination Pagination `json:"pagination"`
	Status     []Status   `json:"status"`
	Datafiles  []string   `json:"datafiles"`
}

// Result wraps response data.
type Result struct {
	Data any `json:"data"`
}

// Response is the envelope of every response.
type Response struct {
	Metadata Metadata `json:"metadata"`
	Result   *Result  `json:"result,omitempty"`
}

func newResponse() Response {
	return Response{Metadata: Metadata{Status: []Status{}, Datafiles: []string{}}}
}

// writePage writes a search result. No results answers 404 with an
// informational status.
func writePage[T any](w http.ResponseWriter, res page.Result[T]) {
	resp := newResponse()
	resp.Metadata.Pagination = Pagination{
		PageSize:    res.PageSize,
		CurrentPage: res.CurrentPage,
		TotalCount:  res.TotalCount,
		TotalPages:  res.TotalPages,
	}
	resp.Result = &Result{Data: res.Data}

	status := http.StatusOK
	if res.Outcome == page.NoResults {
		status = http.StatusNotFound
		resp.Metadata.Status = append(resp.Metadata.Status, Status{Message: "No results", MessageType: StatusInfo})
	}
	writeJSON(w, resp, status)
}

// writeData writes a non-paged payload.
func writeData(w http.ResponseWriter, data any, status int) {
	resp := newResponse()
	resp.Result = &Result{Data: data}
	writeJSON(w, resp, status)
}

// writeCreated reports the URIs of created resources as datafiles.
func writeCreated(w http.ResponseWriter, uris []string, message string) {
	resp := newResponse()
	resp.Metadata.Datafiles = uris
	resp.Metadata.Status = append(resp.Metadata.Status, Status{Message: message, MessageType: StatusInfo})
	writeJSON(w, resp, http.StatusCreated)
}

// writeOK reports a successful write without payload.
func writeOK(w http.ResponseWriter, message string) {
	resp := newResponse()
	resp.Metadata.Status = append(resp.Metadata.Status, Status{Message: message, MessageType: StatusInfo})
	writeJSON(w, resp, http.StatusOK)
}

func writeError(w http.ResponseWriter, err error) {
	resp := newResponse()
	resp.Metadata.Status = append(resp.Metadata.Status, Status{
		Message:     errorMessage(err),
		MessageType: StatusError,
		Details:     err.Error(),
	})
	writeJSON(w, resp, statusFor(err))
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch apperr.CodeOf(err) {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	switch apperr.CodeOf(err) {
	case apperr.CodeValidation:
		return "Bad request"
	case apperr.CodeNotFound:
		return "Not found"
	case apperr.CodeUnsupported:
		return "Not implemented"
	default:
		return "Internal server error"
	}
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
