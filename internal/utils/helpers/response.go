package helpers

import (
	"encoding/json"
	"net/http"
)

// MessageResponse: стандартное тело ответа {"message": "..."}.
type MessageResponse struct {
	Message string `json:"message" example:"OTP sent successfully"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageResponse{Message: msg})
}

func Error(w http.ResponseWriter, status int, errMsg string) {
	Message(w, status, errMsg)
}
