package service

import (
	"errors"
	"strings"

	"gita-guru/internal/supabase"
)

var (
	ErrAuthFailed    = errors.New("authentication failed")
	ErrSignUpFailed  = errors.New("account creation failed")
	ErrProfileLoad   = errors.New("failed to load user profile")
	ErrProfileCreate = errors.New("failed to create user profile")
	ErrRateLimited   = errors.New("rate limited")
)

// ValidationError es un error de formulario detectado antes de llamar a Supabase.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type AuthErrorKind int

const (
	AuthErrorGeneric AuthErrorKind = iota
	AuthErrorInvalidCredentials
	AuthErrorAlreadyRegistered
)

// AuthError es un fallo del proveedor de auth ya clasificado. Raw guarda el
// texto original sin modificar.
type AuthError struct {
	Kind AuthErrorKind
	Raw  string
	Err  error
}

func (e *AuthError) Error() string {
	return e.Raw
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ClassifySignInError usa primero el codigo estructurado de GoTrue.
func ClassifySignInError(err error) *AuthError {
	ae := &AuthError{Kind: AuthErrorGeneric, Raw: err.Error(), Err: err}
	if supabase.ErrorCode(err) == supabase.CodeInvalidCredentials {
		ae.Kind = AuthErrorInvalidCredentials
		return ae
	}
	// Ultimo recurso: matching sobre el texto. Fragil si el proveedor cambia sus mensajes.
	msg := strings.ToLower(ae.Raw)
	if strings.Contains(msg, "invalid") || strings.Contains(msg, "credential") {
		ae.Kind = AuthErrorInvalidCredentials
	}
	return ae
}

// ClassifySignUpError detecta cuentas ya registradas.
func ClassifySignUpError(err error) *AuthError {
	ae := &AuthError{Kind: AuthErrorGeneric, Raw: err.Error(), Err: err}
	switch supabase.ErrorCode(err) {
	case supabase.CodeUserAlreadyExists, supabase.CodeEmailExists:
		ae.Kind = AuthErrorAlreadyRegistered
		return ae
	}
	// Ultimo recurso: matching sobre el texto.
	msg := strings.ToLower(ae.Raw)
	if strings.Contains(msg, "already registered") ||
		(strings.Contains(msg, "email") && strings.Contains(msg, "exists")) {
		ae.Kind = AuthErrorAlreadyRegistered
	}
	return ae
}
