package admission_test

import (
	"strings"
	"testing"
	"time"

	"llavedesol/internal/domain/admission"
)

func validApplication() admission.Application {
	return admission.Application{
		FullName:   "María José Pérez",
		NationalID: "12345678k",
		BirthDate:  "1990-04-12",
		Email:      "maria@correo.cl",
		Phone:      "912345678",
		Profession: "Enfermera",
		Motivation: "Quiero ayudar.",
	}
}

func TestApplication_Validate(t *testing.T) {
	today := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		modify  func(a *admission.Application)
		wantErr error
	}{
		{"valid", func(a *admission.Application) {}, nil},
		{"optional fields blank", func(a *admission.Application) { a.Profession, a.Motivation = "", "" }, nil},
		{"missing phone", func(a *admission.Application) { a.Phone = "" }, admission.ErrMissingFields},
		{"long name", func(a *admission.Application) { a.FullName = strings.Repeat("a", 51) }, admission.ErrFullNameTooLong},
		{"id with letters", func(a *admission.Application) { a.NationalID = "12ab5678" }, admission.ErrInvalidNationalID},
		{"id too short", func(a *admission.Application) { a.NationalID = "12345" }, admission.ErrInvalidNationalID},
		{"id too long", func(a *admission.Application) { a.NationalID = "1234567890" }, admission.ErrInvalidNationalID},
		{"future birth date", func(a *admission.Application) { a.BirthDate = "2030-01-01" }, admission.ErrInvalidBirthDate},
		{"bad birth date", func(a *admission.Application) { a.BirthDate = "12/04/1990" }, admission.ErrInvalidBirthDate},
		{"bad email", func(a *admission.Application) { a.Email = "maria" }, admission.ErrInvalidEmail},
		{"short phone", func(a *admission.Application) { a.Phone = "91234567" }, admission.ErrInvalidPhone},
		{"phone with symbols", func(a *admission.Application) { a.Phone = "+56912345" }, admission.ErrInvalidPhone},
		{"long profession", func(a *admission.Application) { a.Profession = strings.Repeat("p", 51) }, admission.ErrProfessionTooLong},
		{"long motivation", func(a *admission.Application) { a.Motivation = strings.Repeat("m", 301) }, admission.ErrMotivationTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validApplication()
			tt.modify(&a)
			if err := a.Validate(today); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
