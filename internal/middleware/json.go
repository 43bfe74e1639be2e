package middleware

import (
	"encoding/json"
	"net/http"

	"smart-blog-api/internal/model"
)

func writeError(w http.ResponseWriter, status int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Detail: detail, Code: code})
}
