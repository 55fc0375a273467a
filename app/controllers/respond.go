package controllers

import (
	"encoding/json"
	"net/http"

	"trove/app/dto"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.MessageResponse{Message: msg})
}

// writeInternal surfaces the underlying cause in the body, matching the
// service's 500 contract.
func writeInternal(w http.ResponseWriter, msg string, err error) {
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: msg, Error: err.Error()})
}
