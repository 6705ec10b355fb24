// Package respond writes the JSON envelope every endpoint speaks:
//
//	{ "success": bool, "status": "<code>", "message"?, "data"?,
//	  "bookmarks"?, "groups"?, "error"? }
//
// Two legacy rules are preserved on purpose because shipped clients
// depend on them:
//   - validation failures (blank required fields) answer HTTP 200 with
//     status REQUIRED_FIELDS, not a 4xx;
//   - auth failures answer HTTP 401 with status UNAUTHORIZED.
package respond

import (
	"encoding/json"
	"net/http"
)

// Status is the machine-readable code carried in every envelope.
type Status string

const (
	Success             Status = "SUCCESS"
	Error               Status = "ERROR"
	RequiredFields      Status = "REQUIRED_FIELDS"
	Unauthorized        Status = "UNAUTHORIZED"
	NotFound            Status = "NOT_FOUND"
	BadRequest          Status = "BAD_REQUEST"
	InternalServerError Status = "INTERNAL_SERVER_ERROR"
)

// Messages shared across routes. Wording is part of the wire contract.
const (
	MsgAllFieldsRequired      = "All fields are required! please check and update"
	MsgFieldsAndPositionValid = "All fields are required and position must be a valid number!"
	MsgGroupsNotExist         = "One or both groups do not exist"
	MsgBookmarkNotInSource    = "Bookmark not found in the source group"
)

// Envelope is the body of every JSON response. Nil/empty optional fields
// are omitted so each route only surfaces the keys it actually uses.
type Envelope struct {
	Success   bool   `json:"success"`
	Status    Status `json:"status"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Bookmarks any    `json:"bookmarks,omitempty"`
	Groups    any    `json:"groups,omitempty"`
	Error     string `json:"error,omitempty"`
}

// JSON writes env with the given HTTP status code.
func JSON(w http.ResponseWriter, code int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(env)
}

// OK writes a 200 SUCCESS envelope carrying data (may be nil).
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Status: Success, Data: data})
}

// OKMessage writes a 200 SUCCESS envelope with only a message.
func OKMessage(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Status: Success, Message: message})
}

// MissingFields writes the legacy validation answer: HTTP 200 with
// status REQUIRED_FIELDS.
func MissingFields(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Envelope{Status: RequiredFields, Message: message})
}

// Unauthenticated writes a 401 UNAUTHORIZED envelope.
func Unauthenticated(w http.ResponseWriter, message string) {
	JSON(w, http.StatusUnauthorized, Envelope{Status: Unauthorized, Message: message})
}

// Missing writes a 404 NOT_FOUND envelope.
func Missing(w http.ResponseWriter, message string) {
	JSON(w, http.StatusNotFound, Envelope{Status: NotFound, Message: message})
}

// StoreError writes a 500 ERROR envelope. The raw error string is only
// included when expose is true (non-production environments); the status
// code and message are enough for clients either way.
func StoreError(w http.ResponseWriter, err error, expose bool) {
	env := Envelope{Status: Error, Message: "Internal server error"}
	if expose && err != nil {
		env.Error = err.Error()
	}
	JSON(w, http.StatusInternalServerError, env)
}
