package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/gatherly/internal/app/system/auth"
)

// withTestUser creates a request with a user in context.
func withTestUser(id, email string, admin bool) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	return auth.WithTestUser(req, &auth.User{ID: id, Email: email, IsAdmin: admin})
}

func TestUserCtx(t *testing.T) {
	tests := []struct {
		name      string
		req       *http.Request
		wantID    string
		wantEmail string
		wantOK    bool
	}{
		{
			name:      "signed in",
			req:       withTestUser("user-1", "host@example.com", false),
			wantID:    "user-1",
			wantEmail: "host@example.com",
			wantOK:    true,
		},
		{
			name:   "blank id is anonymous",
			req:    withTestUser("  ", "host@example.com", false),
			wantOK: false,
		},
		{
			name:   "no user",
			req:    httptest.NewRequest("GET", "/", nil),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, email, ok := UserCtx(tt.req)
			if ok != tt.wantOK {
				t.Errorf("UserCtx() ok = %v, want %v", ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("UserCtx() id = %q, want %q", id, tt.wantID)
			}
			if email != tt.wantEmail {
				t.Errorf("UserCtx() email = %q, want %q", email, tt.wantEmail)
			}
		})
	}
}

func TestActor(t *testing.T) {
	if got := Actor(withTestUser("user-1", "", false)); got != "user-1" {
		t.Errorf("Actor() = %q, want %q", got, "user-1")
	}
	if got := Actor(httptest.NewRequest("GET", "/", nil)); got != "" {
		t.Errorf("Actor() anonymous = %q, want empty", got)
	}
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		req  *http.Request
		want bool
	}{
		{"admin", withTestUser("u1", "boss@example.com", true), true},
		{"not admin", withTestUser("u2", "guest@example.com", false), false},
		{"admin flag without id", withTestUser("", "boss@example.com", true), false},
		{"anonymous", httptest.NewRequest("GET", "/", nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAdmin(tt.req); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsLoggedIn(t *testing.T) {
	if !IsLoggedIn(withTestUser("u1", "", false)) {
		t.Error("IsLoggedIn() should be true with a user")
	}
	if IsLoggedIn(httptest.NewRequest("GET", "/", nil)) {
		t.Error("IsLoggedIn() should be false without a user")
	}
}

func TestOwns(t *testing.T) {
	req := withTestUser("owner-1", "", false)
	if !Owns(req, "owner-1") {
		t.Error("Owns() should be true for the owner")
	}
	if Owns(req, "owner-2") {
		t.Error("Owns() should be false for another owner")
	}
	if Owns(req, "") {
		t.Error("Owns() should be false for a blank owner")
	}
	if Owns(httptest.NewRequest("GET", "/", nil), "") {
		t.Error("Owns() should be false for anonymous callers")
	}
}
