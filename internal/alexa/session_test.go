package alexa

import "testing"

func TestCSRFFromCookie(t *testing.T) {
	token, err := CSRFFromCookie("session-id=123; csrf=abc123; ubid=xyz")
	if err != nil {
		t.Fatalf("CSRFFromCookie: %v", err)
	}
	if token != "abc123" {
		t.Fatalf("unexpected token: %s", token)
	}

	token, err = CSRFFromCookie("  csrf=abc123 ;  ")
	if err != nil {
		t.Fatalf("CSRFFromCookie with padding: %v", err)
	}
	if token != "abc123" {
		t.Fatalf("unexpected token: %s", token)
	}

	token, err = CSRFFromCookie("csrf=first; csrf=second")
	if err != nil {
		t.Fatalf("CSRFFromCookie: %v", err)
	}
	if token != "first" {
		t.Fatalf("first csrf pair must win, got %s", token)
	}

	// Values may themselves contain '='.
	token, err = CSRFFromCookie("csrf=ab=cd")
	if err != nil {
		t.Fatalf("CSRFFromCookie: %v", err)
	}
	if token != "ab=cd" {
		t.Fatalf("unexpected token: %s", token)
	}

	if _, err := CSRFFromCookie("session-id=123; xcsrf=abc"); err == nil {
		t.Fatalf("expected error when no csrf pair is present")
	}
	if _, err := CSRFFromCookie("csrf=; session-id=123"); err == nil {
		t.Fatalf("expected error for empty csrf value")
	}
}

func TestNewSession(t *testing.T) {
	sess, err := NewSession("csrf=tok; session-id=1", "", "app-token", "")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if sess.csrf != "tok" {
		t.Fatalf("expected csrf extracted from cookie, got %s", sess.csrf)
	}
	if sess.userAgent != defaultUserAgent {
		t.Fatalf("expected default user agent, got %s", sess.userAgent)
	}

	sess, err = NewSession("session-id=1", "explicit", "app-token", "custom-agent")
	if err != nil {
		t.Fatalf("NewSession with explicit csrf: %v", err)
	}
	if sess.csrf != "explicit" || sess.userAgent != "custom-agent" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if _, err := NewSession("", "tok", "app-token", ""); err == nil {
		t.Fatalf("expected error for missing cookie")
	}
	if _, err := NewSession("session-id=1", "", "app-token", ""); err == nil {
		t.Fatalf("expected error when csrf cannot be extracted")
	}
	if _, err := NewSession("csrf=tok", "", "", ""); err == nil {
		t.Fatalf("expected error for missing app token")
	}
}
