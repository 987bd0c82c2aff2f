package dto

// Res is the error envelope rendered at the HTTP boundary.
type Res struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// ResData wraps a successful payload.
type ResData struct {
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
}

func OK(message string, data interface{}) ResData {
	return ResData{StatusCode: 200, Message: message, Data: data}
}
