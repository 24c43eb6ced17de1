package response

import (
	"encoding/json"
	"net/http"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type collectionEnvelope struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

// Pagination describes one page of a list; Total counts every matching row.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// JSON writes v as-is with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, v)
}

func Data(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, dataEnvelope{Data: data})
}

func Collection(w http.ResponseWriter, data any, p Pagination) {
	writeJSON(w, http.StatusOK, collectionEnvelope{Data: data, Pagination: p})
}

func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// ErrorWithDetails carries diagnostic detail such as an upstream error message.
func ErrorWithDetails(w http.ResponseWriter, status int, message string, details any) {
	writeJSON(w, status, errorBody{Error: message, Details: details})
}

// InternalError is the envelope for failures outside the expected error paths.
func InternalError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error:   "Internal server error",
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
