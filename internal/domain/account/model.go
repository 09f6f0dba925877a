package account

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Role is the closed set of back-office roles.
type Role int

const (
	RoleAdmin Role = iota + 1
	RoleTreasurer
	RoleMember
)

// Party identifies a side of the internal messaging board, as the backend names it.
type Party string

const (
	PartyAdmin     Party = "ADMIN"
	PartyTreasurer Party = "TESORERO"
)

// MinPasswordLength is enforced before a change reaches the backend.
const MinPasswordLength = 8

// Domain errors
var (
	ErrNoRole             = errors.New("Usuario sin rol asignado")
	ErrEmptyPassword      = errors.New("todos los campos son obligatorios")
	ErrPasswordTooShort   = errors.New("la nueva contraseña debe tener al menos 8 caracteres")
	ErrPasswordMismatch   = errors.New("las contraseñas no coinciden")
	ErrPasswordUnchanged  = errors.New("la nueva contraseña debe ser distinta de la actual")
	ErrEmptyCredentials   = errors.New("usuario y contraseña son obligatorios")
	ErrInvalidCredentials = errors.New("usuario o contraseña incorrectos")
)

// RoleFromFlags resolves the claim flags with priority admin > treasurer > member.
// PRE: none
// POST: returns ErrNoRole when no flag is set
func RoleFromFlags(isAdmin, isTreasurer, isMember bool) (Role, error) {
	switch {
	case isAdmin:
		return RoleAdmin, nil
	case isTreasurer:
		return RoleTreasurer, nil
	case isMember:
		return RoleMember, nil
	}
	return 0, ErrNoRole
}

// ParseRole reads the value written by String.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "admin":
		return RoleAdmin, true
	case "tesorero":
		return RoleTreasurer, true
	case "socio":
		return RoleMember, true
	}
	return 0, false
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleTreasurer:
		return "tesorero"
	case RoleMember:
		return "socio"
	}
	return ""
}

// Label is the Spanish display name.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleTreasurer:
		return "Tesorero"
	case RoleMember:
		return "Socio"
	}
	return ""
}

// Home is the landing path of the role's panel.
func (r Role) Home() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleTreasurer:
		return "/tesorero"
	case RoleMember:
		return "/socio"
	}
	return "/"
}

// MessageParty returns the messaging side of r; members have none.
func (r Role) MessageParty() (Party, bool) {
	switch r {
	case RoleAdmin:
		return PartyAdmin, true
	case RoleTreasurer:
		return PartyTreasurer, true
	case RoleMember:
		return "", false
	}
	return "", false
}

// Counterpart is the other side of the board.
func (p Party) Counterpart() Party {
	if p == PartyAdmin {
		return PartyTreasurer
	}
	return PartyAdmin
}

// Label is the Spanish display name of the party.
func (p Party) Label() string {
	if p == PartyAdmin {
		return "Administración"
	}
	return "Tesorería"
}

// ValidateCredentials rejects blank login input before it reaches the backend.
func ValidateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrEmptyCredentials
	}
	return nil
}

// ValidatePasswordChange checks a change-password form.
// PRE: none
// POST: returns nil if current, next and confirm may be sent to the backend
func ValidatePasswordChange(current, next, confirm string) error {
	if current == "" || next == "" || confirm == "" {
		return ErrEmptyPassword
	}
	if utf8.RuneCountInString(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if next != confirm {
		return ErrPasswordMismatch
	}
	if next == current {
		return ErrPasswordUnchanged
	}
	return nil
}
