package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"gita-guru/internal/domain"
	"gita-guru/internal/email"
	"gita-guru/internal/repository"
	"gita-guru/internal/supabase"
)

const minPasswordLength = 6

// AuthClient es la parte de la API de auth de Supabase que usa el login.
type AuthClient interface {
	SignInWithPassword(ctx context.Context, email, password string) (supabase.AuthResponse, error)
	SignUp(ctx context.Context, email, password string) (supabase.AuthResponse, error)
	SignOut(ctx context.Context, accessToken string) error
}

// AuthService coordina el login contra Supabase y el alta del perfil.
type AuthService struct {
	logger   *zap.Logger
	auth     AuthClient
	profiles repository.ProfileRepository
	limiter  LoginRateLimiter
	welcome  email.Sender
}

func NewAuthService(logger *zap.Logger, auth AuthClient, profiles repository.ProfileRepository, limiter LoginRateLimiter) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		logger:   logger,
		auth:     auth,
		profiles: profiles,
		limiter:  limiter,
	}
}

type SignInInput struct {
	Email    string
	Password string
	// PriorAccessToken es el token remoto de una sesion anterior, si la hubo.
	PriorAccessToken string
}

type SignUpInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// AuthResult es la identidad ya respaldada por un perfil mas el token remoto.
type AuthResult struct {
	Identity    domain.Identity
	AccessToken string
}

func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (AuthResult, error) {
	if s.auth == nil || s.profiles == nil {
		return AuthResult{}, errors.New("auth service not configured")
	}

	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return AuthResult{}, &ValidationError{Field: "email", Message: MsgFillAllFields}
	}
	if s.limiter != nil && !s.limiter.Allow(normalizeEmail(email)) {
		return AuthResult{}, ErrRateLimited
	}

	if err := s.auth.SignOut(ctx, in.PriorAccessToken); err != nil {
		s.logger.Debug("ignoring sign out failure before sign in", zap.Error(err))
	}

	resp, err := s.auth.SignInWithPassword(ctx, email, in.Password)
	if err != nil {
		return AuthResult{}, ClassifySignInError(err)
	}
	if resp.User.ID == "" {
		return AuthResult{}, ErrAuthFailed
	}

	userEmail := resp.User.Email
	if userEmail == "" {
		userEmail = email
	}

	profile, err := s.profiles.GetByID(ctx, resp.User.ID)
	if errors.Is(err, repository.ErrNotFound) {
		profile, err = s.profiles.CreateIfNotExists(ctx, resp.User.ID, DisplayNameFromEmail(userEmail), userEmail)
	}
	if err != nil {
		s.logger.Error("load profile after sign in failed", zap.String("user_id", resp.User.ID), zap.Error(err))
		return AuthResult{}, fmt.Errorf("%w: %w", ErrProfileLoad, err)
	}
	if profile.ID == "" {
		return AuthResult{}, ErrProfileLoad
	}

	return AuthResult{
		Identity:    domain.IdentityFromProfile(profile),
		AccessToken: resp.AccessToken,
	}, nil
}

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (AuthResult, error) {
	if s.auth == nil || s.profiles == nil {
		return AuthResult{}, errors.New("auth service not configured")
	}

	if err := ValidateSignUp(in); err != nil {
		return AuthResult{}, err
	}
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	resp, err := s.auth.SignUp(ctx, email, in.Password)
	if err != nil {
		return AuthResult{}, ClassifySignUpError(err)
	}
	if resp.User.ID == "" {
		return AuthResult{}, ErrSignUpFailed
	}

	profile, err := s.profiles.CreateIfNotExists(ctx, resp.User.ID, name, email)
	if err != nil {
		s.logger.Error("create profile after sign up failed", zap.String("user_id", resp.User.ID), zap.Error(err))
		return AuthResult{}, fmt.Errorf("%w: %w", ErrProfileCreate, err)
	}
	if profile.ID == "" {
		return AuthResult{}, ErrProfileCreate
	}

	if s.welcome != nil {
		if err := s.welcome.SendWelcome(ctx, profile.Email, profile.Name); err != nil {
			s.logger.Warn("welcome email failed", zap.String("user_id", profile.ID), zap.Error(err))
		}
	}

	return AuthResult{
		Identity:    domain.IdentityFromProfile(profile),
		AccessToken: resp.AccessToken,
	}, nil
}

// SetWelcomeSender activa el correo de bienvenida tras un alta exitosa.
func (s *AuthService) SetWelcomeSender(sender email.Sender) {
	s.welcome = sender
}

// SignOut cierra la sesion remota; los errores solo se registran.
func (s *AuthService) SignOut(ctx context.Context, accessToken string) {
	if s.auth == nil {
		return
	}
	if err := s.auth.SignOut(ctx, accessToken); err != nil {
		s.logger.Debug("remote sign out failed", zap.Error(err))
	}
}

// ValidateSignUp aplica las reglas del formulario en orden: campos vacios,
// confirmacion distinta y largo minimo.
func ValidateSignUp(in SignUpInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" ||
		in.Password == "" || in.ConfirmPassword == "" {
		return &ValidationError{Field: "form", Message: MsgFillAllFields}
	}
	if in.Password != in.ConfirmPassword {
		return &ValidationError{Field: "confirm_password", Message: MsgPasswordsMismatch}
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: MsgPasswordTooShort}
	}
	return nil
}

// DisplayNameFromEmail toma la parte local del email y la capitaliza:
// "jane.doe@x.com" -> "Jane.doe".
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(r)) + strings.ToLower(local[size:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
