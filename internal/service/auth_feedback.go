package service

import "errors"

const (
	MsgFillAllFields       = "Please fill in all fields"
	MsgPasswordsMismatch   = "Passwords do not match"
	MsgPasswordTooShort    = "Password must be at least 6 characters long"
	MsgInvalidCredentials  = "Invalid email or password. Please check your credentials."
	MsgNoAccountHint       = `Don't have an account? Click "Sign Up" above to create one.`
	MsgAlreadyRegistered   = "This email is already registered. Please sign in instead."
	MsgHaveAccountHint     = `Already have an account? Click "Sign In" above.`
	MsgAuthFailed          = "Authentication failed"
	MsgSignUpFailed        = "Account creation failed"
	MsgProfileLoadFailed   = "Failed to load user profile"
	MsgProfileCreateFailed = "Failed to create user profile"
	MsgRateLimited         = "Too many attempts. Please wait a few minutes and try again."
	MsgWelcomeBack         = "Welcome back! Redirecting..."
	MsgAccountCreated      = "Account created successfully! Welcome to Gita Guru!"
)

type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
)

// Notice es un mensaje mostrable en la pagina de login.
type Notice struct {
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
}

func errorNotice(text string) Notice { return Notice{Level: NoticeError, Text: text} }

// SignInFeedback traduce un error de SignIn a mensajes para el usuario.
func SignInFeedback(err error) []Notice {
	if notices, ok := commonFeedback(err); ok {
		return notices
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		if ae.Kind == AuthErrorInvalidCredentials {
			return []Notice{errorNotice(MsgInvalidCredentials), {Level: NoticeInfo, Text: MsgNoAccountHint}}
		}
		return []Notice{errorNotice("Sign in error: " + ae.Raw)}
	}
	if errors.Is(err, ErrAuthFailed) {
		return []Notice{errorNotice(MsgAuthFailed)}
	}
	if errors.Is(err, ErrProfileLoad) {
		return []Notice{errorNotice(MsgProfileLoadFailed)}
	}
	return []Notice{errorNotice("Sign in error: " + err.Error())}
}

// SignUpFeedback traduce un error de SignUp a mensajes para el usuario.
func SignUpFeedback(err error) []Notice {
	if notices, ok := commonFeedback(err); ok {
		return notices
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		if ae.Kind == AuthErrorAlreadyRegistered {
			return []Notice{errorNotice(MsgAlreadyRegistered), {Level: NoticeInfo, Text: MsgHaveAccountHint}}
		}
		return []Notice{errorNotice("Sign up error: " + ae.Raw)}
	}
	if errors.Is(err, ErrSignUpFailed) {
		return []Notice{errorNotice(MsgSignUpFailed)}
	}
	if errors.Is(err, ErrProfileCreate) {
		return []Notice{errorNotice(MsgProfileCreateFailed)}
	}
	return []Notice{errorNotice("Sign up error: " + err.Error())}
}

func commonFeedback(err error) ([]Notice, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return []Notice{errorNotice(ve.Message)}, true
	}
	if errors.Is(err, ErrRateLimited) {
		return []Notice{errorNotice(MsgRateLimited)}, true
	}
	return nil, false
}
