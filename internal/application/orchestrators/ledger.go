package orchestrators

import (
	"context"
	"log/slog"

	"llavedesol/internal/domain/ledger"
)

// LedgerBackend defines the backend interface needed by the ledger orchestrators.
type LedgerBackend interface {
	CreateDocument(ctx context.Context, in ledger.Input) (ledger.Document, error)
	UpdateDocument(ctx context.Context, id int64, in ledger.Input) (ledger.Document, error)
	DeleteDocument(ctx context.Context, id int64) error
}

// SaveDocumentInput carries the ledger document form.
type SaveDocumentInput struct {
	ID       int64 // 0 uploads a new document
	Document ledger.Input
	Uploader string
}

// LedgerDeps holds dependencies for the ledger orchestrators.
type LedgerDeps struct {
	Backend LedgerBackend
}

// ExecuteSaveDocument validates and uploads a document, or updates an existing one.
// PRE: Uploader is the treasurer's username
// POST: a file is required on create and optional on update
func ExecuteSaveDocument(ctx context.Context, input SaveDocumentInput, deps LedgerDeps) (ledger.Document, error) {
	in := input.Document
	creating := input.ID == 0
	if err := in.Validate(creating); err != nil {
		return ledger.Document{}, err
	}

	var (
		doc ledger.Document
		err error
	)
	if creating {
		doc, err = deps.Backend.CreateDocument(ctx, in)
	} else {
		doc, err = deps.Backend.UpdateDocument(ctx, input.ID, in)
	}
	if err != nil {
		return ledger.Document{}, err
	}

	slog.Info("ledger_event", "event", "document_saved", "document_id", doc.ID, "created", creating,
		"kind", string(in.Kind), "with_file", in.File != nil, "uploader", input.Uploader)
	return doc, nil
}

// ExecuteDeleteDocument removes a ledger document.
func ExecuteDeleteDocument(ctx context.Context, id int64, uploader string, deps LedgerDeps) error {
	if err := deps.Backend.DeleteDocument(ctx, id); err != nil {
		return err
	}
	slog.Info("ledger_event", "event", "document_deleted", "document_id", id, "uploader", uploader)
	return nil
}
