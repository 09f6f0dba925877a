package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"llavedesol/internal/domain/account"
)

// signToken builds an access token the way the backend does.
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestDecodeClaims(t *testing.T) {
	exp := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	access := signToken(t, jwt.MapClaims{
		"user_id":     7,
		"username":    "tesoreria",
		"is_tesorero": true,
		"exp":         exp.Unix(),
	})

	c, err := DecodeClaims(access)
	if err != nil {
		t.Fatal(err)
	}
	if c.UserID != 7 || c.Username != "tesoreria" || !c.IsTreasurer || c.IsAdmin || c.IsMember {
		t.Errorf("claims = %+v", c)
	}
	if !c.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", c.ExpiresAt, exp)
	}
}

func TestDecodeClaims_Errors(t *testing.T) {
	if _, err := DecodeClaims(""); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("empty: %v", err)
	}
	if _, err := DecodeClaims("not.a.jwt"); !errors.Is(err, ErrMalformedJWT) {
		t.Errorf("garbage: %v", err)
	}
}

func TestNew(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	t.Run("admin wins", func(t *testing.T) {
		access := signToken(t, jwt.MapClaims{"username": "ana", "is_admin": true, "is_socio": true})
		c, err := New("sid", Tokens{Access: access, Refresh: "r"}, now)
		if err != nil {
			t.Fatal(err)
		}
		if c.Role != account.RoleAdmin || c.Username() != "ana" {
			t.Errorf("context = %+v", c)
		}
		if c.Bearer() != "Bearer "+access {
			t.Errorf("Bearer() = %q", c.Bearer())
		}
	})

	t.Run("no role", func(t *testing.T) {
		access := signToken(t, jwt.MapClaims{"username": "nadie"})
		if _, err := New("sid", Tokens{Access: access}, now); !errors.Is(err, account.ErrNoRole) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestContext_Expired(t *testing.T) {
	created := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	c := Context{CreatedAt: created}
	if c.Expired(created.Add(23 * time.Hour)) {
		t.Error("expired too early")
	}
	if !c.Expired(created.Add(MaxAge)) {
		t.Error("not expired at MaxAge")
	}
}
