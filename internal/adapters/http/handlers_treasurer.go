package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"llavedesol/internal/adapters/backend"
	"llavedesol/internal/application/listutil"
	"llavedesol/internal/application/orchestrators"
	"llavedesol/internal/domain/donation"
	"llavedesol/internal/domain/ledger"
)

// maxUploadMemory bounds the in-memory part of a document upload.
const maxUploadMemory = ledger.MaxFileSize + 1<<20

// handleTreasurerDashboard lists the published documents with the upload form.
func (s *server) handleTreasurerDashboard(w http.ResponseWriter, r *http.Request) {
	docs, err := s.caller(r).ListDocuments(r.Context())
	if err != nil {
		s.backendFailed(w, r, err)
		return
	}
	renderTemplate(w, r, "treasurer.html", map[string]any{
		"Documents": docs,
		"Form":      ledger.Input{Kind: ledger.DefaultKind},
	})
}

// handleDocumentForm renders the edit form of one document.
func (s *server) handleDocumentForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	doc, err := s.findDocument(r, id)
	if err != nil {
		if errors.Is(err, errDocumentNotFound) {
			http.NotFound(w, r)
			return
		}
		s.backendFailed(w, r, err)
		return
	}
	renderTemplate(w, r, "document_form.html", map[string]any{
		"Document": doc,
		"Form": ledger.Input{
			Title:       doc.Title,
			Description: doc.Description,
			Kind:        doc.Kind,
			Period:      doc.Period.Format("2006-01-02"),
		},
	})
}

var errDocumentNotFound = errors.New("document not found")

// findDocument looks id up in the document list; the backend has no single-document read.
func (s *server) findDocument(r *http.Request, id int64) (ledger.Document, error) {
	docs, err := s.caller(r).ListDocuments(r.Context())
	if err != nil {
		return ledger.Document{}, err
	}
	for _, d := range docs {
		if d.ID == id {
			return d, nil
		}
	}
	return ledger.Document{}, errDocumentNotFound
}

// handleDocumentSave uploads (POST /tesorero/documentos) or updates (POST /tesorero/documentos/{id}).
func (s *server) handleDocumentSave(w http.ResponseWriter, r *http.Request) {
	var id int64
	if raw := r.PathValue("id"); raw != "" {
		var err error
		if id, err = strconv.ParseInt(raw, 10, 64); err != nil {
			http.NotFound(w, r)
			return
		}
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadMemory+ledger.MaxFileSize)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "Formulario inválido o archivo demasiado grande", http.StatusBadRequest)
		return
	}

	in := ledger.Input{
		Title:       r.FormValue("titulo"),
		Description: r.FormValue("descripcion"),
		Kind:        ledger.Kind(r.FormValue("tipo")),
		Period:      r.FormValue("fecha_periodo"),
	}
	file, err := readUpload(r, "archivo")
	if err != nil {
		http.Error(w, "No pudimos leer el archivo", http.StatusBadRequest)
		return
	}
	in.File = file

	_, err = orchestrators.ExecuteSaveDocument(r.Context(), orchestrators.SaveDocumentInput{
		ID:       id,
		Document: in,
		Uploader: currentSession(r).Username(),
	}, orchestrators.LedgerDeps{Backend: s.caller(r)})
	if err == nil {
		redirectFlash(w, r, "/tesorero", "guardado")
		return
	}

	msg, status, handled := s.submitFailed(w, r, err)
	if handled {
		return
	}
	in.File = nil
	if id == 0 {
		docs, lerr := s.caller(r).ListDocuments(r.Context())
		if lerr != nil {
			s.backendFailed(w, r, lerr)
			return
		}
		renderTemplate(w, r, "treasurer.html", map[string]any{
			"Documents": docs, "Form": in, "Error": msg, "Status": status,
		})
		return
	}
	renderTemplate(w, r, "document_form.html", map[string]any{
		"Document": ledger.Document{ID: id, Title: in.Title},
		"Form":     in,
		"Error":    msg,
		"Status":   status,
	})
}

// readUpload returns the named file part, or nil when none was sent.
// At most MaxFileSize+1 bytes are read so validation can flag oversized files.
func readUpload(r *http.Request, field string) (*ledger.File, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if hdr.Size == 0 && hdr.Filename == "" {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(f, ledger.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &ledger.File{Name: hdr.Filename, Data: data}, nil
}

// handleDocumentDelete handles POST /tesorero/documentos/{id}/eliminar
func (s *server) handleDocumentDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	err = orchestrators.ExecuteDeleteDocument(r.Context(), id, currentSession(r).Username(),
		orchestrators.LedgerDeps{Backend: s.caller(r)})
	if err != nil && !backend.IsNotFound(err) {
		s.backendFailed(w, r, err)
		return
	}
	redirectFlash(w, r, "/tesorero", "eliminado")
}

// handleDonations renders one page of the donation list, paged by the backend.
func (s *server) handleDonations(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParsePageParams(r.URL.Query(), donation.PageSizes, donation.DefaultPageSize)
	page, err := s.caller(r).ListDonations(r.Context(), params.Page, params.PerPage)
	if backend.IsNotFound(err) && params.Page > 1 {
		// past the last page: the paginator answers 404
		http.Redirect(w, r, fmt.Sprintf("/tesorero/donaciones?limit=%d", params.PerPage), http.StatusSeeOther)
		return
	}
	if err != nil {
		s.backendFailed(w, r, err)
		return
	}
	renderTemplate(w, r, "donations.html", map[string]any{
		"Donations": page.Results,
		"Page":      listutil.NewPageInfo(params.Page, params.PerPage, page.Count),
		"PageSizes": donation.PageSizes,
	})
}

// handleDonationsExport streams the backend's spreadsheet to the browser.
func (s *server) handleDonationsExport(w http.ResponseWriter, r *http.Request) {
	exp, err := s.caller(r).ExportDonations(r.Context())
	if err != nil {
		s.backendFailed(w, r, err)
		return
	}
	defer exp.Body.Close()
	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.FileName))
	if _, err := io.Copy(w, exp.Body); err != nil {
		slog.Warn("donation_export_interrupted", "error", err)
	}
}

// handleMemberDashboard shows the announcements to a member.
func (s *server) handleMemberDashboard(w http.ResponseWriter, r *http.Request) {
	notices, err := s.caller(r).ListNotices(r.Context())
	if err != nil {
		s.backendFailed(w, r, err)
		return
	}
	renderTemplate(w, r, "member.html", map[string]any{"Notices": notices})
}
