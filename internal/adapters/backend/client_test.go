package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"llavedesol/internal/adapters/http/perf"
	"llavedesol/internal/domain/account"
	"llavedesol/internal/domain/admission"
	"llavedesol/internal/domain/calendar"
	"llavedesol/internal/domain/contact"
	"llavedesol/internal/domain/donation"
	"llavedesol/internal/domain/ledger"
	"llavedesol/internal/domain/message"
	"llavedesol/internal/domain/notice"
)

// recorded captures the last request the fake backend received.
type recorded struct {
	method string
	path   string
	query  string
	auth   string
	ctype  string
	body   []byte
}

// newBackend starts a fake backend answering every request with status and reply.
func newBackend(t *testing.T, status int, reply string) (*Client, *recorded, *perf.Collector) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.auth = r.Header.Get("Authorization")
		rec.ctype = r.Header.Get("Content-Type")
		rec.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	collector := perf.NewCollector(100)
	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: time.Second}, collector), rec, collector
}

func decodeBody(t *testing.T, rec *recorded) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.body, &m); err != nil {
		t.Fatalf("request body %q: %v", rec.body, err)
	}
	return m
}

func TestCaller_BearerAndPerf(t *testing.T) {
	c, rec, collector := newBackend(t, http.StatusOK, `[]`)
	if _, err := c.As("tok").ListEvents(context.Background()); err != nil {
		t.Fatal(err)
	}
	if rec.auth != "Bearer tok" {
		t.Errorf("Authorization = %q", rec.auth)
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if len(snap.Backend) != 1 || snap.Backend[0].Label != "GET /api/eventos-calendario/" {
		t.Errorf("perf = %+v", snap.Backend)
	}

	if _, err := c.Anonymous().ListNotices(context.Background()); err != nil {
		t.Fatal(err)
	}
	if rec.auth != "" {
		t.Errorf("anonymous call sent %q", rec.auth)
	}
}

func TestCaller_APIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		reply   string
		unauth  bool
		missing bool
		message string
	}{
		{"detail", http.StatusUnauthorized, `{"detail":"Token inválido"}`, true, false, "Token inválido"},
		{"field error", http.StatusBadRequest, `{"titulo":["Este campo es requerido."]}`, false, false, "titulo: Este campo es requerido."},
		{"error field", http.StatusBadRequest, `{"error":"Contraseña actual incorrecta"}`, false, false, "Contraseña actual incorrecta"},
		{"not found", http.StatusNotFound, `{"detail":"No encontrado."}`, false, true, "No encontrado."},
		{"html body", http.StatusInternalServerError, `<h1>oops</h1>`, false, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newBackend(t, tt.status, tt.reply)
			_, err := c.As("tok").GetNotice(context.Background(), 3)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d", apiErr.Status)
			}
			if IsUnauthorized(err) != tt.unauth || IsNotFound(err) != tt.missing {
				t.Errorf("IsUnauthorized=%v IsNotFound=%v", IsUnauthorized(err), IsNotFound(err))
			}
			if !IsBackendError(err) {
				t.Error("IsBackendError = false")
			}
			if apiErr.Message() != tt.message {
				t.Errorf("Message() = %q, want %q", apiErr.Message(), tt.message)
			}
		})
	}
}

func TestCaller_Unreachable(t *testing.T) {
	collector := perf.NewCollector(10)
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, collector)
	err := c.As("t").DeleteEvent(context.Background(), 1)
	if !errors.Is(err, ErrUnavailable) || !IsBackendError(err) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if len(snap.Backend) != 1 || snap.Backend[0].Errors != 1 {
		t.Errorf("perf = %+v", snap.Backend)
	}
}

func TestLogin(t *testing.T) {
	c, rec, _ := newBackend(t, http.StatusOK, `{"access":"a","refresh":"r"}`)
	tokens, err := c.Anonymous().Login(context.Background(), "ana", "secreta123")
	if err != nil {
		t.Fatal(err)
	}
	if tokens.Access != "a" || tokens.Refresh != "r" {
		t.Errorf("tokens = %+v", tokens)
	}
	body := decodeBody(t, rec)
	if rec.path != "/api/token/" || body["username"] != "ana" || body["password"] != "secreta123" {
		t.Errorf("request %s %v", rec.path, body)
	}
}

func TestChangePassword(t *testing.T) {
	c, rec, _ := newBackend(t, http.StatusOK, `{}`)
	if err := c.As("tok").ChangePassword(context.Background(), "vieja123", "nueva1234"); err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, rec)
	if rec.path != "/api/cambiar-password/" || body["old_password"] != "vieja123" || body["new_password"] != "nueva1234" {
		t.Errorf("request %s %v", rec.path, body)
	}
}

func TestSaveEvent(t *testing.T) {
	tests := []struct {
		name   string
		id     int64
		method string
		path   string
	}{
		{"insert", 0, http.MethodPost, "/api/eventos-calendario/"},
		{"update", 7, http.MethodPut, "/api/eventos-calendario/7/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec, _ := newBackend(t, http.StatusOK, `{}`)
			e := calendar.Event{
				ID: tt.id, Title: "Asamblea", Date: "2026-10-20",
				StartTime: "09:00", EndTime: "17:00", Category: calendar.CategoryMeeting,
			}
			if err := c.As("tok").SaveEvent(context.Background(), e); err != nil {
				t.Fatal(err)
			}
			if rec.method != tt.method || rec.path != tt.path {
				t.Errorf("%s %s, want %s %s", rec.method, rec.path, tt.method, tt.path)
			}
			body := decodeBody(t, rec)
			if body["titulo"] != "Asamblea" || body["tipo_evento"] != "REUNION" {
				t.Errorf("body = %v", body)
			}
			if _, hasID := body["id"]; hasID != (tt.id != 0) {
				t.Errorf("id present = %v", hasID)
			}
		})
	}
}

func TestListEvents_TolerantTimes(t *testing.T) {
	c, _, _ := newBackend(t, http.StatusOK,
		`[{"id":1,"titulo":"Feria","descripcion":null,"fecha":"2026-10-20","hora_inicio":"10:30:00","hora_fin":null,"tipo_evento":"EVENTO"}]`)
	events, err := c.As("tok").ListEvents(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].StartTime != "10:30" || events[0].EndTime != "" {
		t.Errorf("events = %+v", events)
	}
}

func TestNotices(t *testing.T) {
	c, _, _ := newBackend(t, http.StatusOK, `[
		{"id":1,"titulo":"Antiguo","descripcion":"a","imagen":null,"creado_en":"2026-09-01T10:00:00Z"},
		{"id":2,"titulo":"Nuevo","descripcion":"b","imagen":"http://x/y.png","creado_en":"2026-10-01T10:00:00.123456"}
	]`)
	list, err := c.Anonymous().ListNotices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Title != "Nuevo" || list[0].ImageURL != "http://x/y.png" {
		t.Errorf("list = %+v", list)
	}
	if list[0].CreatedAt.Month() != time.October {
		t.Errorf("CreatedAt = %v", list[0].CreatedAt)
	}
}

func TestSaveNotice(t *testing.T) {
	c, rec, _ := newBackend(t, http.StatusOK, `{"id":4,"titulo":"T","descripcion":"D","creado_en":"2026-10-17"}`)
	got, err := c.As("tok").SaveNotice(context.Background(), notice.Notice{ID: 4, Title: "T", Content: "D"})
	if err != nil {
		t.Fatal(err)
	}
	if rec.method != http.MethodPut || rec.path != "/api/anuncios/4/" {
		t.Errorf("%s %s", rec.method, rec.path)
	}
	if got.ID != 4 || got.CreatedAt.Day() != 17 {
		t.Errorf("got = %+v", got)
	}
	if body := decodeBody(t, rec); body["descripcion"] != "D" {
		t.Errorf("body = %v", body)
	}
}

func TestCreateDocument_Multipart(t *testing.T) {
	c, rec, _ := newBackend(t, http.StatusCreated,
		`{"id":9,"titulo":"Balance","descripcion":"","tipo":"ANUAL","fecha_periodo":"2025-12-31","archivo":"http://x/libros_cuentas/balance.pdf","fecha_subida":"2026-10-17T09:00:00-03:00"}`)
	in := ledger.Input{
		Title: "Balance", Kind: ledger.KindYearly, Period: "2025-12-31",
		File: &ledger.File{Name: "balance.pdf", Data: []byte("%PDF")},
	}
	doc, err := c.As("tok").CreateDocument(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(rec.ctype, "multipart/form-data") {
		t.Fatalf("Content-Type = %q", rec.ctype)
	}
	if !strings.Contains(string(rec.body), `name="archivo"; filename="balance.pdf"`) ||
		!strings.Contains(string(rec.body), "ANUAL") {
		t.Errorf("multipart body missing parts:\n%s", rec.body)
	}
	if doc.FileName() != "balance.pdf" || doc.Kind != ledger.KindYearly || doc.Period.Year() != 2025 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestUpdateDocument_WithoutFile(t *testing.T) {
	c, rec, _ := newBackend(t, http.StatusOK, `{"id":9,"titulo":"B","tipo":"MENSUAL","fecha_periodo":"2026-01-31"}`)
	_, err := c.As("tok").UpdateDocument(context.Background(), 9, ledger.Input{Title: "B", Kind: ledger.KindMonthly, Period: "2026-01-31"})
	if err != nil {
		t.Fatal(err)
	}
	if rec.method != http.MethodPatch || rec.path != "/api/libros-cuentas/9/" {
		t.Errorf("%s %s", rec.method, rec.path)
	}
	if strings.Contains(string(rec.body), `name="archivo"`) {
		t.Error("file part sent without a file")
	}
}

func TestListDonations(t *testing.T) {
	c, rec, _ := newBackend(t, http.StatusOK, `{"count":21,"next":"http://x/?page=3","previous":null,"results":[
		{"id":1,"nombre_donador":"Anónimo","monto":"1500.00","preference_id":"p1","pago_id":null,"estado":"pendiente","fecha_donacion":null}
	]}`)
	page, err := c.As("tok").ListDonations(context.Background(), 2, 7)
	if err != nil {
		t.Fatal(err)
	}
	if rec.query != "page=2&limit=10" {
		t.Errorf("query = %q (invalid limit must fall back)", rec.query)
	}
	if page.Count != 21 || len(page.Results) != 1 {
		t.Fatalf("page = %+v", page)
	}
	d := page.Results[0]
	if d.Amount != "1500.00" || d.PaymentID != "" || !d.Date.IsZero() {
		t.Errorf("donation = %+v", d)
	}
}

func TestExportDonations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.ms-excel")
		w.Header().Set("Content-Disposition", `attachment; filename="donaciones_2026.xlsx"`)
		io.WriteString(w, "PK")
	}))
	defer srv.Close()
	c := NewClient(Config{BaseURL: srv.URL}, nil)

	exp, err := c.As("tok").ExportDonations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer exp.Body.Close()
	data, _ := io.ReadAll(exp.Body)
	if string(data) != "PK" || exp.FileName != "donaciones_2026.xlsx" || exp.ContentType != "application/vnd.ms-excel" {
		t.Errorf("export = %+v %q", exp, data)
	}
}

func TestMessages(t *testing.T) {
	c, rec, _ := newBackend(t, http.StatusOK, `[
		{"id":3,"emisor_tipo":"TESORERO","destinatario_tipo":"ADMIN","asunto":"Cierre","mensaje":"Listo","leido":false,"creado_en":"2026-10-16T18:00:00Z","archivo_adjunto":null}
	]`)
	list, err := c.As("tok").ListMessagesFrom(context.Background(), account.PartyTreasurer)
	if err != nil {
		t.Fatal(err)
	}
	if rec.query != "emisor_tipo=TESORERO" {
		t.Errorf("query = %q", rec.query)
	}
	if len(list) != 1 || list[0].From != account.PartyTreasurer || !list[0].IsNewFor(account.PartyAdmin) {
		t.Errorf("list = %+v", list)
	}

	c, rec, _ = newBackend(t, http.StatusCreated, `{"id":4,"emisor_tipo":"ADMIN","destinatario_tipo":"TESORERO","asunto":"Hola","mensaje":"x"}`)
	sent, err := c.As("tok").SendMessage(context.Background(), message.NewDraft(account.PartyAdmin, "Hola", "x"))
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, rec)
	if body["emisor_tipo"] != "ADMIN" || body["destinatario_tipo"] != "TESORERO" || body["asunto"] != "Hola" {
		t.Errorf("body = %v", body)
	}
	if sent.ID != 4 {
		t.Errorf("sent = %+v", sent)
	}
}

func TestPublicForms(t *testing.T) {
	c, rec, _ := newBackend(t, http.StatusCreated, `{}`)
	ctx := context.Background()

	if err := c.Anonymous().SubmitContact(ctx, contact.Message{Name: "Eva", Email: "eva@example.cl", Content: "Hola"}); err != nil {
		t.Fatal(err)
	}
	if body := decodeBody(t, rec); rec.path != "/api/contacto/" || body["correo"] != "eva@example.cl" {
		t.Errorf("contact %s %v", rec.path, body)
	}

	app := admission.Application{FullName: "Eva Díaz", NationalID: "12345678K", BirthDate: "1990-05-01",
		Email: "eva@example.cl", Phone: "912345678"}
	if err := c.Anonymous().SubmitApplication(ctx, app); err != nil {
		t.Fatal(err)
	}
	if body := decodeBody(t, rec); rec.path != "/api/solicitud-ingreso/" || body["rut_dni"] != "12345678K" || body["fecha_nacimiento"] != "1990-05-01" {
		t.Errorf("admission %s %v", rec.path, body)
	}
}

func TestCreatePreference(t *testing.T) {
	c, rec, _ := newBackend(t, http.StatusOK, `{"id":"123-abc"}`)
	id, err := c.Anonymous().CreatePreference(context.Background(), donation.Pledge{Amount: 5000, DonorName: "Eva"})
	if err != nil {
		t.Fatal(err)
	}
	if id != "123-abc" {
		t.Errorf("id = %q", id)
	}
	item, _ := decodeBody(t, rec)["item"].(map[string]any)
	if item["title"] != donation.ItemTitle || item["unit_price"] != float64(5000) || item["quantity"] != float64(1) {
		t.Errorf("item = %v", item)
	}

	c, _, _ = newBackend(t, http.StatusOK, `{}`)
	if _, err := c.Anonymous().CreatePreference(context.Background(), donation.Pledge{Amount: 1}); !errors.Is(err, ErrNoPreference) {
		t.Errorf("err = %v, want ErrNoPreference", err)
	}
}

func TestIsBackendError_Validation(t *testing.T) {
	if IsBackendError(notice.ErrEmptyTitle) {
		t.Error("a validation error was classified as a backend error")
	}
}
