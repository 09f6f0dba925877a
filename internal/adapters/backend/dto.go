package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"llavedesol/internal/domain/account"
	"llavedesol/internal/domain/donation"
	"llavedesol/internal/domain/ledger"
	"llavedesol/internal/domain/message"
	"llavedesol/internal/domain/notice"
)

// apiTime accepts the timestamp shapes the backend emits: RFC 3339 with or without an
// offset, and bare dates. Offset-less values are read in local time.
type apiTime struct {
	time.Time
}

var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *apiTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range apiTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

type noticeWire struct {
	ID          int64   `json:"id"`
	Titulo      string  `json:"titulo"`
	Descripcion string  `json:"descripcion"`
	Imagen      string  `json:"imagen"`
	CreadoEn    apiTime `json:"creado_en"`
}

func (d noticeWire) toDomain() notice.Notice {
	return notice.Notice{
		ID:        d.ID,
		Title:     d.Titulo,
		Content:   d.Descripcion,
		ImageURL:  d.Imagen,
		CreatedAt: d.CreadoEn.Time,
	}
}

type noticePayload struct {
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
	Imagen      string `json:"imagen,omitempty"`
}

func noticeFromDomain(n notice.Notice) noticePayload {
	return noticePayload{Titulo: n.Title, Descripcion: n.Content, Imagen: n.ImageURL}
}

type documentWire struct {
	ID           int64   `json:"id"`
	Titulo       string  `json:"titulo"`
	Descripcion  string  `json:"descripcion"`
	Tipo         string  `json:"tipo"`
	FechaPeriodo apiTime `json:"fecha_periodo"`
	Archivo      string  `json:"archivo"`
	FechaSubida  apiTime `json:"fecha_subida"`
}

func (d documentWire) toDomain() ledger.Document {
	return ledger.Document{
		ID:          d.ID,
		Title:       d.Titulo,
		Description: d.Descripcion,
		FileURL:     d.Archivo,
		Kind:        ledger.Kind(d.Tipo),
		Period:      d.FechaPeriodo.Time,
		UploadedAt:  d.FechaSubida.Time,
	}
}

// Monto arrives as a decimal string ("1500.00"); json.Number accepts it quoted.
type donationWire struct {
	ID            int64       `json:"id"`
	NombreDonador string      `json:"nombre_donador"`
	Monto         json.Number `json:"monto"`
	PreferenceID  string      `json:"preference_id"`
	PagoID        string      `json:"pago_id"`
	Estado        string      `json:"estado"`
	FechaDonacion apiTime     `json:"fecha_donacion"`
}

func (d donationWire) toDomain() donation.Donation {
	return donation.Donation{
		ID:           d.ID,
		DonorName:    d.NombreDonador,
		Amount:       d.Monto.String(),
		PreferenceID: d.PreferenceID,
		PaymentID:    d.PagoID,
		Status:       d.Estado,
		Date:         d.FechaDonacion.Time,
	}
}

type donationPageWire struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []donationWire `json:"results"`
}

type messageWire struct {
	ID               int64   `json:"id"`
	EmisorTipo       string  `json:"emisor_tipo"`
	DestinatarioTipo string  `json:"destinatario_tipo"`
	Asunto           string  `json:"asunto"`
	Mensaje          string  `json:"mensaje"`
	Leido            bool    `json:"leido"`
	CreadoEn         apiTime `json:"creado_en"`
	ArchivoAdjunto   *string `json:"archivo_adjunto"`
}

func (m messageWire) toDomain() message.Message {
	out := message.Message{
		ID:        m.ID,
		From:      account.Party(m.EmisorTipo),
		To:        account.Party(m.DestinatarioTipo),
		Subject:   m.Asunto,
		Content:   m.Mensaje,
		Read:      m.Leido,
		CreatedAt: m.CreadoEn.Time,
	}
	if m.ArchivoAdjunto != nil {
		out.AttachmentURL = *m.ArchivoAdjunto
	}
	return out
}

type messageDraftWire struct {
	EmisorTipo       string `json:"emisor_tipo"`
	DestinatarioTipo string `json:"destinatario_tipo"`
	Asunto           string `json:"asunto"`
	Mensaje          string `json:"mensaje"`
}
