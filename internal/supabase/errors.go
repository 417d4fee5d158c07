package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Codigos de error estructurados que devuelve GoTrue.
const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeUserAlreadyExists  = "user_already_exists"
	CodeEmailExists        = "email_exists"
)

// APIError representa una respuesta >= 400 de Supabase.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error devuelve el mensaje crudo del proveedor.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("supabase: %s", strings.ToLower(http.StatusText(e.Status)))
}

// ErrorCode extrae el codigo estructurado de err, si lo hay.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var payload struct {
		ErrorCode        string          `json:"error_code"`
		Code             json.RawMessage `json:"code"`
		Msg              string          `json:"msg"`
		Message          string          `json:"message"`
		ErrorDescription string          `json:"error_description"`
		Error            string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Code = payload.ErrorCode
	if apiErr.Code == "" && len(payload.Code) > 0 {
		// GoTrue antiguo manda code numerico (status http); PostgREST manda string.
		var s string
		if json.Unmarshal(payload.Code, &s) == nil {
			apiErr.Code = s
		}
	}
	for _, m := range []string{payload.Msg, payload.Message, payload.ErrorDescription, payload.Error} {
		if strings.TrimSpace(m) != "" {
			apiErr.Message = m
			break
		}
	}
	return apiErr
}
