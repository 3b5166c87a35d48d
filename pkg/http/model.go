package http

// APIResponse is the envelope every dashboard endpoint answers with. Status
// mirrors the HTTP status code.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"product_name"`
	Message string                 `json:"message,omitempty" example:"product_name is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// ListDataResponse wraps catalog style listings.
type ListDataResponse struct {
	Rows  interface{} `json:"rows"`
	Total int64       `json:"total"`
}
