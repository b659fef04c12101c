package model

// ErrorResponse is the JSON structure the backend returns on failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
