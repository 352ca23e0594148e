package models

// Response shapes match what the web client consumes: success payloads are
// returned directly and every failure is a bare {"error": "..."} object.

type ErrorResponse struct {
	Error string `json:"error"`
}

type IDResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
