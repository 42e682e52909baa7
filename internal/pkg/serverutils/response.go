package serverutils

// APIResponse is the success envelope every endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// ErrorEnvelope is the failure envelope. Kind carries the business error
// classification so clients can branch without parsing messages.
type ErrorEnvelope struct {
	Success bool        `json:"success"`
	Error   ErrorBody   `json:"error"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) ErrorEnvelope {
	return ErrorEnvelope{
		Success: false,
		Error:   ErrorBody{Code: code, Message: message},
	}
}

func ErrorResponseKind(code int, kind, message string) ErrorEnvelope {
	return ErrorEnvelope{
		Success: false,
		Error:   ErrorBody{Code: code, Kind: kind, Message: message},
	}
}

// ErrorEnvelopeWithData attaches a body to a failure envelope. Settlement
// uses it: a failed gateway refund is an error outcome that still carries
// the refund's final state.
func ErrorEnvelopeWithData(code int, kind, message string, data interface{}) ErrorEnvelope {
	return ErrorEnvelope{
		Success: false,
		Error:   ErrorBody{Code: code, Kind: kind, Message: message},
		Data:    data,
	}
}
