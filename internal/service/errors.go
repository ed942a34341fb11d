package service

// Error codes returned as string tags in JSON bodies. The approval flow never
// collapses these into a single "invalid" answer: each failure mode is
// distinguishable so the approval page can tell the user what actually
// happened to their link.
const (
	CodeTokenInvalid     = "TOKEN_INVALIDO"
	CodeTokenUsed        = "TOKEN_USADO"
	CodeTokenExpired     = "TOKEN_EXPIRADO"
	CodeOrderProcessed   = "ORDEN_PROCESADA"
	CodeTokenActive      = "TOKEN_ACTIVO"
	CodeInvalidState     = "ESTADO_INVALIDO"
	CodePINInvalid       = "PIN_INVALIDO"
	CodeApproverNotFound = "APROBADOR_NO_ENCONTRADO"
	CodeServerError      = "SERVER_ERROR"
)

// FlowError is a state-conflict or validation error from the approval flow.
// Code is one of the constants above and is what goes on the wire; Message is
// a human-readable Spanish description for the approval page.
type FlowError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// RemainingMinutes is set for TOKEN_ACTIVO so the caller can tell how long
	// the currently live link remains valid.
	RemainingMinutes int `json:"remaining_minutes,omitempty"`
}

func (e *FlowError) Error() string { return e.Code }

func flowErr(code, message string) *FlowError {
	return &FlowError{Code: code, Message: message}
}

// AsFlowError unwraps err into a *FlowError if it is one.
func AsFlowError(err error) (*FlowError, bool) {
	fe, ok := err.(*FlowError)
	return fe, ok
}
