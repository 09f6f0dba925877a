package admission

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"llavedesol/internal/domain/contact"
)

// Field limits of the membership application.
const (
	MaxFullNameLength   = 50
	MaxProfessionLength = 50
	MaxMotivationLength = 300
	PhoneDigits         = 9
)

var (
	nationalIDPattern = regexp.MustCompile(`^[0-9]{6,8}[0-9kK]$`)
	phonePattern      = regexp.MustCompile(`^[0-9]{9}$`)
)

// Domain errors
var (
	ErrMissingFields     = errors.New("Completa todos los campos obligatorios.")
	ErrFullNameTooLong   = errors.New("El nombre no puede superar los 50 caracteres.")
	ErrInvalidNationalID = errors.New("El RUT/DNI debe tener entre 7 y 9 caracteres, solo números y K.")
	ErrInvalidBirthDate  = errors.New("La fecha de nacimiento no es válida.")
	ErrInvalidEmail      = errors.New("Por favor ingresa un correo electrónico válido.")
	ErrInvalidPhone      = errors.New("El teléfono debe tener 9 dígitos.")
	ErrProfessionTooLong = errors.New("La profesión no puede superar los 50 caracteres.")
	ErrMotivationTooLong = errors.New("La motivación no puede superar los 300 caracteres.")
)

// Application is a request to join the organisation.
type Application struct {
	FullName   string
	NationalID string
	BirthDate  string
	Email      string
	Phone      string
	Profession string
	Motivation string
}

// Validate trims and checks the application.
// PRE: today is the current civil date
// POST: Returns nil if valid, error otherwise
func (a *Application) Validate(today time.Time) error {
	a.FullName = strings.TrimSpace(a.FullName)
	a.NationalID = strings.TrimSpace(a.NationalID)
	a.BirthDate = strings.TrimSpace(a.BirthDate)
	a.Email = strings.TrimSpace(a.Email)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Profession = strings.TrimSpace(a.Profession)
	a.Motivation = strings.TrimSpace(a.Motivation)

	if a.FullName == "" || a.NationalID == "" || a.BirthDate == "" || a.Email == "" || a.Phone == "" {
		return ErrMissingFields
	}
	if utf8.RuneCountInString(a.FullName) > MaxFullNameLength {
		return ErrFullNameTooLong
	}
	if !nationalIDPattern.MatchString(a.NationalID) {
		return ErrInvalidNationalID
	}
	born, err := time.Parse("2006-01-02", a.BirthDate)
	if err != nil || !born.Before(today) {
		return ErrInvalidBirthDate
	}
	if !contact.ValidEmail(a.Email) {
		return ErrInvalidEmail
	}
	if !phonePattern.MatchString(a.Phone) {
		return ErrInvalidPhone
	}
	if utf8.RuneCountInString(a.Profession) > MaxProfessionLength {
		return ErrProfessionTooLong
	}
	if utf8.RuneCountInString(a.Motivation) > MaxMotivationLength {
		return ErrMotivationTooLong
	}
	return nil
}
