package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthResponse cubre tanto la sesion completa como el usuario "pelado" que
// devuelve signup cuando la confirmacion por email esta activa.
type AuthResponse struct {
	AccessToken  string
	RefreshToken string
	User         User
}

type authPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
	ID           string `json:"id"`
	Email        string `json:"email"`
}

func (p authPayload) response() AuthResponse {
	resp := AuthResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
	}
	if p.User != nil {
		resp.User = *p.User
	} else {
		resp.User = User{ID: p.ID, Email: p.Email}
	}
	return resp
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInWithPassword autentica email/password contra GoTrue.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (AuthResponse, error) {
	body, err := jsonBody(credentials{Email: email, Password: password})
	if err != nil {
		return AuthResponse{}, err
	}
	var payload authPayload
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": []string{"password"}},
		body:   body,
	}, &payload)
	if err != nil {
		return AuthResponse{}, err
	}
	return payload.response(), nil
}

// SignUp crea la cuenta en GoTrue.
func (c *Client) SignUp(ctx context.Context, email, password string) (AuthResponse, error) {
	body, err := jsonBody(credentials{Email: email, Password: password})
	if err != nil {
		return AuthResponse{}, err
	}
	var payload authPayload
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   body,
	}, &payload)
	if err != nil {
		return AuthResponse{}, err
	}
	return payload.response(), nil
}

// SignOut revoca la sesion remota asociada a accessToken. Sin token no hace nada.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return nil
	}
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		bearer: accessToken,
	}, nil)
}
