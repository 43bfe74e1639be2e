package model

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
