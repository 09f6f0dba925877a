package ledger

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind is the reporting period of a ledger document.
type Kind string

const (
	KindMonthly   Kind = "MENSUAL"
	KindQuarterly Kind = "TRIMESTRAL"
	KindYearly    Kind = "ANUAL"
	KindEvent     Kind = "EVENTO"
)

// DefaultKind is used when the form leaves the kind blank.
const DefaultKind = KindMonthly

// Kinds lists every kind in display order.
var Kinds = []Kind{KindMonthly, KindQuarterly, KindYearly, KindEvent}

var kindLabels = map[Kind]string{
	KindMonthly:   "Mensual",
	KindQuarterly: "Trimestral",
	KindYearly:    "Anual",
	KindEvent:     "Evento Específico",
}

// Label returns the display name; unknown kinds are shown verbatim.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// Limits enforced before upload.
const (
	MaxTitleLength = 200
	MaxFileSize    = 10 << 20
)

// AllowedExtensions are the document formats the treasury publishes.
var AllowedExtensions = []string{".pdf", ".xlsx", ".xls", ".csv", ".docx", ".doc"}

// Domain errors
var (
	ErrEmptyTitle      = errors.New("el título es obligatorio")
	ErrTitleTooLong    = errors.New("el título no puede superar los 200 caracteres")
	ErrInvalidKind     = errors.New("tipo de documento inválido")
	ErrInvalidPeriod   = errors.New("la fecha del periodo es obligatoria (AAAA-MM-DD)")
	ErrFileRequired    = errors.New("debes adjuntar un archivo")
	ErrFileTooLarge    = errors.New("el archivo supera los 10 MB")
	ErrFileTypeInvalid = errors.New("formato de archivo no permitido")
)

// Document is a published financial record.
type Document struct {
	ID          int64
	Title       string
	Description string
	FileURL     string
	Kind        Kind
	Period      time.Time
	UploadedAt  time.Time
}

// FileName returns the last path segment of FileURL.
func (d Document) FileName() string {
	if d.FileURL == "" {
		return ""
	}
	return filepath.Base(d.FileURL)
}

// File is an uploaded attachment.
type File struct {
	Name string
	Data []byte
}

// Input is the create/update form of a document.
// File is optional on update.
type Input struct {
	Title       string
	Description string
	Kind        Kind
	Period      string
	File        *File
}

// Validate checks if the Input has valid data.
// PRE: requireFile is true for creation
// POST: Returns nil if valid, error otherwise
func (in *Input) Validate(requireFile bool) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if in.Kind == "" {
		in.Kind = DefaultKind
	}
	if _, ok := kindLabels[in.Kind]; !ok {
		return ErrInvalidKind
	}
	if _, err := time.Parse("2006-01-02", in.Period); err != nil {
		return ErrInvalidPeriod
	}
	if in.File == nil || len(in.File.Data) == 0 {
		if requireFile {
			return ErrFileRequired
		}
		in.File = nil
		return nil
	}
	if len(in.File.Data) > MaxFileSize {
		return ErrFileTooLarge
	}
	if !allowedExtension(in.File.Name) {
		return ErrFileTypeInvalid
	}
	return nil
}

func allowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}
