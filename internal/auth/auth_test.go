package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Generate("alice", time.Now())
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	name, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if name != "alice" {
		t.Errorf("name = %q, want %q", name, "alice")
	}
}

func TestVerify_Expired(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, _ := m.Generate("alice", time.Now().Add(-2*time.Hour))
	if _, err := m.Verify(token); err != ErrExpiredToken {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	other := NewManager("other-secret", time.Hour)
	token, _ := other.Generate("alice", time.Now())

	m := NewManager("test-secret", time.Hour)
	if _, err := m.Verify(token); err != ErrInvalidSignature {
		t.Errorf("Verify() error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerify_Corrupted(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	if _, err := m.Verify("not-a-token"); err != ErrCorruptedToken {
		t.Errorf("Verify() error = %v, want ErrCorruptedToken", err)
	}
}

func TestVerify_NoneAlgorithmRejected(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, _ := m.Generate("alice", time.Now())
	parts := strings.Split(token, ".")

	// {"alg":"none","typ":"JWT"}
	forged := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0" + "." + parts[1] + "."
	if _, err := m.Verify(forged); err != ErrInvalidSigningAlg {
		t.Errorf("Verify() error = %v, want ErrInvalidSigningAlg", err)
	}
}

func TestFromRequest_Cookie(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, _ := m.Generate("bob", time.Now())

	r := httptest.NewRequest("GET", "/ws", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: token})

	name, err := m.FromRequest(r)
	if err != nil {
		t.Fatalf("FromRequest() error: %v", err)
	}
	if name != "bob" {
		t.Errorf("name = %q, want %q", name, "bob")
	}
}

func TestFromRequest_BearerHeader(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, _ := m.Generate("carol", time.Now())

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	name, err := m.FromRequest(r)
	if err != nil {
		t.Fatalf("FromRequest() error: %v", err)
	}
	if name != "carol" {
		t.Errorf("name = %q, want %q", name, "carol")
	}
}

func TestFromRequest_NoToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	r := httptest.NewRequest("GET", "/ws", nil)
	if _, err := m.FromRequest(r); err != ErrNoToken {
		t.Errorf("FromRequest() error = %v, want ErrNoToken", err)
	}
}
