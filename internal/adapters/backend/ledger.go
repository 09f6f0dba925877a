package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"llavedesol/internal/domain/ledger"
)

const ledgerPath = "/api/libros-cuentas/"

// ListDocuments returns every ledger document.
func (cl *Caller) ListDocuments(ctx context.Context) ([]ledger.Document, error) {
	var wire []documentWire
	if err := cl.do(ctx, request{method: http.MethodGet, path: ledgerPath, label: ledgerPath}, &wire); err != nil {
		return nil, err
	}
	out := make([]ledger.Document, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// CreateDocument uploads a new document.
// PRE: in.Validate(true) == nil
func (cl *Caller) CreateDocument(ctx context.Context, in ledger.Input) (ledger.Document, error) {
	return cl.sendDocument(ctx, http.MethodPost, ledgerPath, ledgerPath, in)
}

// UpdateDocument patches a document; the file is replaced only when in.File is set.
// PRE: in.Validate(false) == nil
func (cl *Caller) UpdateDocument(ctx context.Context, id int64, in ledger.Input) (ledger.Document, error) {
	return cl.sendDocument(ctx, http.MethodPatch, fmt.Sprintf("%s%d/", ledgerPath, id), ledgerPath+"{id}/", in)
}

// DeleteDocument removes the document with id.
func (cl *Caller) DeleteDocument(ctx context.Context, id int64) error {
	r := request{method: http.MethodDelete, path: fmt.Sprintf("%s%d/", ledgerPath, id), label: ledgerPath + "{id}/"}
	return cl.do(ctx, r, nil)
}

func (cl *Caller) sendDocument(ctx context.Context, method, path, label string, in ledger.Input) (ledger.Document, error) {
	body, contentType, err := documentForm(in)
	if err != nil {
		return ledger.Document{}, err
	}
	r := request{method: method, path: path, label: label, body: body, contentType: contentType}
	var w documentWire
	if err := cl.do(ctx, r, &w); err != nil {
		return ledger.Document{}, err
	}
	return w.toDomain(), nil
}

func documentForm(in ledger.Input) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"titulo", in.Title},
		{"descripcion", in.Description},
		{"tipo", string(in.Kind)},
		{"fecha_periodo", in.Period},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if in.File != nil {
		part, err := mw.CreateFormFile("archivo", in.File.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(in.File.Data); err != nil {
			return nil, "", fmt.Errorf("write file part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
