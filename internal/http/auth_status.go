package http

import (
	"errors"
	"net/http"

	"gita-guru/internal/service"
)

// authStatus mapea un error de AuthService al status HTTP de la respuesta.
func authStatus(err error) int {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	if errors.Is(err, service.ErrRateLimited) {
		return http.StatusTooManyRequests
	}
	var ae *service.AuthError
	if errors.As(err, &ae) {
		switch ae.Kind {
		case service.AuthErrorInvalidCredentials:
			return http.StatusUnauthorized
		case service.AuthErrorAlreadyRegistered:
			return http.StatusConflict
		default:
			return http.StatusBadGateway
		}
	}
	if errors.Is(err, service.ErrAuthFailed) || errors.Is(err, service.ErrSignUpFailed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
