package utils

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func WriteJSONError(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: status, Text: text}})
}

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
