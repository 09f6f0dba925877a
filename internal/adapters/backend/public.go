package backend

import (
	"context"
	"errors"
	"net/http"

	"llavedesol/internal/domain/admission"
	"llavedesol/internal/domain/contact"
	"llavedesol/internal/domain/donation"
)

type contactWire struct {
	Nombre  string `json:"nombre"`
	Correo  string `json:"correo"`
	Mensaje string `json:"mensaje"`
}

// SubmitContact posts the public contact form.
// PRE: m.Validate() == nil
func (cl *Caller) SubmitContact(ctx context.Context, m contact.Message) error {
	r, err := jsonRequest(http.MethodPost, "/api/contacto/", "/api/contacto/",
		contactWire{Nombre: m.Name, Correo: m.Email, Mensaje: m.Content})
	if err != nil {
		return err
	}
	return cl.do(ctx, r, nil)
}

type applicationWire struct {
	NombreCompleto  string `json:"nombre_completo"`
	RutDNI          string `json:"rut_dni"`
	FechaNacimiento string `json:"fecha_nacimiento"`
	Email           string `json:"email"`
	Telefono        string `json:"telefono"`
	Profesion       string `json:"profesion"`
	Motivacion      string `json:"motivacion"`
}

// SubmitApplication posts a membership application.
// PRE: a.Validate(today) == nil
func (cl *Caller) SubmitApplication(ctx context.Context, a admission.Application) error {
	r, err := jsonRequest(http.MethodPost, "/api/solicitud-ingreso/", "/api/solicitud-ingreso/", applicationWire{
		NombreCompleto:  a.FullName,
		RutDNI:          a.NationalID,
		FechaNacimiento: a.BirthDate,
		Email:           a.Email,
		Telefono:        a.Phone,
		Profesion:       a.Profession,
		Motivacion:      a.Motivation,
	})
	if err != nil {
		return err
	}
	return cl.do(ctx, r, nil)
}

type preferenceItem struct {
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
	DonorName string `json:"donor_name"`
}

type preferenceRequest struct {
	Item preferenceItem `json:"item"`
}

type preferenceResponse struct {
	ID string `json:"id"`
}

// ErrNoPreference is returned when the backend answers without a preference id.
var ErrNoPreference = errors.New("backend returned no payment preference id")

// CreatePreference registers a donation checkout and returns its preference id.
// PRE: p has been normalized
func (cl *Caller) CreatePreference(ctx context.Context, p donation.Pledge) (string, error) {
	r, err := jsonRequest(http.MethodPost, "/api/crear-preferencia/", "/api/crear-preferencia/", preferenceRequest{
		Item: preferenceItem{
			Title:     donation.ItemTitle,
			Quantity:  1,
			UnitPrice: p.Amount,
			DonorName: p.DonorName,
		},
	})
	if err != nil {
		return "", err
	}
	var resp preferenceResponse
	if err := cl.do(ctx, r, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", ErrNoPreference
	}
	return resp.ID, nil
}
