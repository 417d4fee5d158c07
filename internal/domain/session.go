package domain

import "time"

type Tab string

const (
	TabSignIn Tab = "signin"
	TabSignUp Tab = "signup"
)

// ParseTab normaliza el selector de pestaña; cualquier valor desconocido es signin.
func ParseTab(raw string) Tab {
	if Tab(raw) == TabSignUp {
		return TabSignUp
	}
	return TabSignIn
}

// Session es el estado por navegador que antes vivia en el session store global.
type Session struct {
	ID          string    `json:"id"`
	ActiveTab   Tab       `json:"active_tab"`
	User        *Identity `json:"user,omitempty"`
	AccessToken string    `json:"access_token,omitempty"`
	// Flash se muestra una sola vez en la siguiente pagina.
	Flash     string    `json:"flash,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string) Session {
	return Session{
		ID:        id,
		ActiveTab: TabSignIn,
		UpdatedAt: time.Now().UTC(),
	}
}

func (s Session) Authenticated() bool {
	return s.User != nil && s.User.ID != ""
}
