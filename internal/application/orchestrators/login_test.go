package orchestrators

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"llavedesol/internal/adapters/backend"
	"llavedesol/internal/domain/account"
	"llavedesol/internal/domain/session"
)

var fixedTime = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "sid-001" }

func accessToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

type mockIssuer struct {
	tokens session.Tokens
	err    error
	calls  int
}

func (m *mockIssuer) Login(_ context.Context, _, _ string) (session.Tokens, error) {
	m.calls++
	return m.tokens, m.err
}

type mockSessions struct {
	created []session.Context
	deleted []string
	purged  int64
	err     error
}

func (m *mockSessions) Create(_ context.Context, c session.Context) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, c)
	return nil
}

func (m *mockSessions) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockSessions) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return m.purged, m.err
}

func loginDeps(issuer *mockIssuer, store *mockSessions) LoginDeps {
	return LoginDeps{Backend: issuer, Sessions: store, NewID: fixedID, Now: fixedNow}
}

func TestExecuteLogin_Success(t *testing.T) {
	issuer := &mockIssuer{tokens: session.Tokens{
		Access:  accessToken(t, jwt.MapClaims{"username": "tesoreria", "is_tesorero": true}),
		Refresh: "r",
	}}
	store := &mockSessions{}

	sess, err := ExecuteLogin(context.Background(), LoginInput{Username: " tesoreria ", Password: "secreta"}, loginDeps(issuer, store))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID != "sid-001" || sess.Role != account.RoleTreasurer || !sess.CreatedAt.Equal(fixedTime) {
		t.Errorf("session = %+v", sess)
	}
	if len(store.created) != 1 || store.created[0].ID != "sid-001" {
		t.Errorf("created = %+v", store.created)
	}
}

func TestExecuteLogin_Errors(t *testing.T) {
	noRole := session.Tokens{Access: accessToken(t, jwt.MapClaims{"username": "nadie"})}
	valid := session.Tokens{Access: accessToken(t, jwt.MapClaims{"username": "ana", "is_admin": true})}

	tests := []struct {
		name      string
		input     LoginInput
		issuer    *mockIssuer
		storeErr  error
		want      error
		wantCalls int
	}{
		{"blank username", LoginInput{Username: "  ", Password: "x"}, &mockIssuer{}, nil, account.ErrEmptyCredentials, 0},
		{"blank password", LoginInput{Username: "ana"}, &mockIssuer{}, nil, account.ErrEmptyCredentials, 0},
		{"rejected", LoginInput{Username: "ana", Password: "x"},
			&mockIssuer{err: &backend.APIError{Status: http.StatusUnauthorized}}, nil, account.ErrInvalidCredentials, 1},
		{"no role", LoginInput{Username: "nadie", Password: "x"}, &mockIssuer{tokens: noRole}, nil, account.ErrNoRole, 1},
		{"store failure", LoginInput{Username: "ana", Password: "x"}, &mockIssuer{tokens: valid}, errors.New("disk full"), nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockSessions{err: tt.storeErr}
			_, err := ExecuteLogin(context.Background(), tt.input, loginDeps(tt.issuer, store))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if tt.issuer.calls != tt.wantCalls {
				t.Errorf("backend calls = %d, want %d", tt.issuer.calls, tt.wantCalls)
			}
			if len(store.created) != 0 {
				t.Error("session stored on failure")
			}
		})
	}
}

func TestExecuteLogin_BackendDownIsNotInvalidCredentials(t *testing.T) {
	issuer := &mockIssuer{err: &backend.APIError{Status: http.StatusBadGateway}}
	_, err := ExecuteLogin(context.Background(), LoginInput{Username: "ana", Password: "x"}, loginDeps(issuer, &mockSessions{}))
	if err == nil || errors.Is(err, account.ErrInvalidCredentials) {
		t.Errorf("err = %v", err)
	}
}

func TestExecuteLogout(t *testing.T) {
	store := &mockSessions{}
	if err := ExecuteLogout(context.Background(), session.Context{}, LogoutDeps{Sessions: store}); err != nil {
		t.Fatal(err)
	}
	if len(store.deleted) != 0 {
		t.Error("empty session deleted")
	}
	if err := ExecuteLogout(context.Background(), session.Context{ID: "sid-9"}, LogoutDeps{Sessions: store}); err != nil {
		t.Fatal(err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "sid-9" {
		t.Errorf("deleted = %v", store.deleted)
	}
}

type mockPasswordChanger struct {
	current, next string
	calls         int
	err           error
}

func (m *mockPasswordChanger) ChangePassword(_ context.Context, current, next string) error {
	m.calls++
	m.current, m.next = current, next
	return m.err
}

func TestExecuteChangePassword(t *testing.T) {
	tests := []struct {
		name      string
		input     ChangePasswordInput
		want      error
		wantCalls int
	}{
		{"valid", ChangePasswordInput{CurrentPassword: "antigua1", NewPassword: "nuevaclave", Confirmation: "nuevaclave"}, nil, 1},
		{"empty", ChangePasswordInput{NewPassword: "nuevaclave", Confirmation: "nuevaclave"}, account.ErrEmptyPassword, 0},
		{"short", ChangePasswordInput{CurrentPassword: "a", NewPassword: "corta", Confirmation: "corta"}, account.ErrPasswordTooShort, 0},
		{"mismatch", ChangePasswordInput{CurrentPassword: "a", NewPassword: "nuevaclave", Confirmation: "otraclave"}, account.ErrPasswordMismatch, 0},
		{"unchanged", ChangePasswordInput{CurrentPassword: "nuevaclave", NewPassword: "nuevaclave", Confirmation: "nuevaclave"}, account.ErrPasswordUnchanged, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockPasswordChanger{}
			err := ExecuteChangePassword(context.Background(), tt.input, ChangePasswordDeps{Backend: m})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if m.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", m.calls, tt.wantCalls)
			}
		})
	}
}

func TestExecuteChangePassword_BackendError(t *testing.T) {
	m := &mockPasswordChanger{err: &backend.APIError{Status: http.StatusBadRequest, Body: []byte(`{"error":"Contraseña actual incorrecta"}`)}}
	err := ExecuteChangePassword(context.Background(), ChangePasswordInput{
		CurrentPassword: "antigua1", NewPassword: "nuevaclave", Confirmation: "nuevaclave",
	}, ChangePasswordDeps{Backend: m})
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Errorf("err = %v", err)
	}
	if m.current != "antigua1" || m.next != "nuevaclave" {
		t.Errorf("sent %q -> %q", m.current, m.next)
	}
}

func TestExecutePurgeSessions(t *testing.T) {
	n, err := ExecutePurgeSessions(context.Background(), PurgeSessionsDeps{Sessions: &mockSessions{purged: 3}, Now: fixedNow})
	if err != nil || n != 3 {
		t.Errorf("n = %d, err = %v", n, err)
	}
	if _, err := ExecutePurgeSessions(context.Background(), PurgeSessionsDeps{Sessions: &mockSessions{err: errors.New("locked")}, Now: fixedNow}); err == nil {
		t.Error("expected error")
	}
}
