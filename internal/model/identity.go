package model

import "strings"

// Identity is the profile of the signed-in user.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProfileUpdate carries the optional fields of a profile change. Nil fields
// are left untouched by the server.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Empty reports whether the update carries no usable field.
func (p ProfileUpdate) Empty() bool {
	nameSet := p.Name != nil && strings.TrimSpace(*p.Name) != ""
	passwordSet := p.Password != nil && *p.Password != ""
	return !nameSet && !passwordSet
}
