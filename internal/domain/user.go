package domain

import "time"

// Profile es el registro de aplicacion que refleja una identidad de Supabase.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Identity es la identidad de sesion; solo existe respaldada por un Profile.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func IdentityFromProfile(p Profile) Identity {
	return Identity{ID: p.ID, Email: p.Email, Name: p.Name}
}
