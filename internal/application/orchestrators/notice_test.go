package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"llavedesol/internal/domain/ledger"
	"llavedesol/internal/domain/notice"
)

type mockNoticeBackend struct {
	saved   []notice.Notice
	deleted []int64
	err     error
}

func (m *mockNoticeBackend) SaveNotice(_ context.Context, n notice.Notice) (notice.Notice, error) {
	if m.err != nil {
		return notice.Notice{}, m.err
	}
	m.saved = append(m.saved, n)
	if n.ID == 0 {
		n.ID = int64(100 + len(m.saved))
	}
	n.CreatedAt = fixedTime
	return n, nil
}

func (m *mockNoticeBackend) DeleteNotice(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func TestExecuteSaveNotice(t *testing.T) {
	tests := []struct {
		name    string
		input   SaveNoticeInput
		want    error
		wantID  int64
		wantOut int
	}{
		{"create", SaveNoticeInput{Title: " Feria solidaria ", Content: "**Sábado** en la plaza", Author: "ana"}, nil, 101, 1},
		{"update", SaveNoticeInput{ID: 7, Title: "Feria", Content: "Cambio de hora"}, nil, 7, 1},
		{"missing title", SaveNoticeInput{Content: "x"}, notice.ErrEmptyTitle, 0, 0},
		{"missing content", SaveNoticeInput{Title: "x", Content: "   "}, notice.ErrEmptyContent, 0, 0},
		{"long title", SaveNoticeInput{Title: strings.Repeat("a", notice.MaxTitleLength+1), Content: "x"}, notice.ErrTitleTooLong, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := &mockNoticeBackend{}
			n, err := ExecuteSaveNotice(context.Background(), tt.input, SaveNoticeDeps{Backend: be})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if n.ID != tt.wantID {
				t.Errorf("ID = %d, want %d", n.ID, tt.wantID)
			}
			if len(be.saved) != tt.wantOut {
				t.Errorf("backend saves = %d, want %d", len(be.saved), tt.wantOut)
			}
		})
	}
}

func TestExecuteSaveNotice_Trims(t *testing.T) {
	be := &mockNoticeBackend{}
	_, err := ExecuteSaveNotice(context.Background(), SaveNoticeInput{
		Title: "  Feria ", Content: " texto ", ImageURL: " https://img/1.png ",
	}, SaveNoticeDeps{Backend: be})
	if err != nil {
		t.Fatal(err)
	}
	got := be.saved[0]
	if got.Title != "Feria" || got.Content != "texto" || got.ImageURL != "https://img/1.png" {
		t.Errorf("sent = %+v", got)
	}
}

func TestExecuteDeleteNotice(t *testing.T) {
	be := &mockNoticeBackend{}
	if err := ExecuteDeleteNotice(context.Background(), DeleteNoticeInput{ID: 4}, SaveNoticeDeps{Backend: be}); err != nil {
		t.Fatal(err)
	}
	if len(be.deleted) != 1 || be.deleted[0] != 4 {
		t.Errorf("deleted = %v", be.deleted)
	}

	be.err = errors.New("404")
	if err := ExecuteDeleteNotice(context.Background(), DeleteNoticeInput{ID: 5}, SaveNoticeDeps{Backend: be}); err == nil {
		t.Error("expected error")
	}
}

type mockLedgerBackend struct {
	created []ledger.Input
	updated map[int64]ledger.Input
	deleted []int64
}

func (m *mockLedgerBackend) CreateDocument(_ context.Context, in ledger.Input) (ledger.Document, error) {
	m.created = append(m.created, in)
	return ledger.Document{ID: 50, Title: in.Title, Kind: in.Kind}, nil
}

func (m *mockLedgerBackend) UpdateDocument(_ context.Context, id int64, in ledger.Input) (ledger.Document, error) {
	if m.updated == nil {
		m.updated = map[int64]ledger.Input{}
	}
	m.updated[id] = in
	return ledger.Document{ID: id, Title: in.Title, Kind: in.Kind}, nil
}

func (m *mockLedgerBackend) DeleteDocument(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func TestExecuteSaveDocument(t *testing.T) {
	pdf := &ledger.File{Name: "balance.pdf", Data: []byte("%PDF")}

	t.Run("create requires file", func(t *testing.T) {
		be := &mockLedgerBackend{}
		_, err := ExecuteSaveDocument(context.Background(), SaveDocumentInput{
			Document: ledger.Input{Title: "Balance", Period: "2026-09-30"},
		}, LedgerDeps{Backend: be})
		if !errors.Is(err, ledger.ErrFileRequired) {
			t.Errorf("err = %v", err)
		}
		if len(be.created) != 0 {
			t.Error("backend reached")
		}
	})

	t.Run("create defaults kind", func(t *testing.T) {
		be := &mockLedgerBackend{}
		doc, err := ExecuteSaveDocument(context.Background(), SaveDocumentInput{
			Document: ledger.Input{Title: "Balance", Period: "2026-09-30", File: pdf},
		}, LedgerDeps{Backend: be})
		if err != nil {
			t.Fatal(err)
		}
		if doc.ID != 50 || be.created[0].Kind != ledger.DefaultKind {
			t.Errorf("doc = %+v, sent = %+v", doc, be.created[0])
		}
	})

	t.Run("update without file", func(t *testing.T) {
		be := &mockLedgerBackend{}
		_, err := ExecuteSaveDocument(context.Background(), SaveDocumentInput{
			ID:       8,
			Document: ledger.Input{Title: "Balance anual", Kind: ledger.KindYearly, Period: "2025-12-31"},
		}, LedgerDeps{Backend: be})
		if err != nil {
			t.Fatal(err)
		}
		in, ok := be.updated[8]
		if !ok || in.File != nil || in.Kind != ledger.KindYearly {
			t.Errorf("updated = %+v", be.updated)
		}
	})

	t.Run("bad extension", func(t *testing.T) {
		_, err := ExecuteSaveDocument(context.Background(), SaveDocumentInput{
			Document: ledger.Input{Title: "x", Period: "2026-09-30", File: &ledger.File{Name: "a.exe", Data: []byte{1}}},
		}, LedgerDeps{Backend: &mockLedgerBackend{}})
		if !errors.Is(err, ledger.ErrFileTypeInvalid) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestExecuteDeleteDocument(t *testing.T) {
	be := &mockLedgerBackend{}
	if err := ExecuteDeleteDocument(context.Background(), 3, "tesoreria", LedgerDeps{Backend: be}); err != nil {
		t.Fatal(err)
	}
	if len(be.deleted) != 1 || be.deleted[0] != 3 {
		t.Errorf("deleted = %v", be.deleted)
	}
}
