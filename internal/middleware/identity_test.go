package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/httputil"
)

func TestIdentity(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantOK    bool
		wantID    string
		wantAdmin bool
	}{
		{name: "anonymous", header: "", wantOK: false},
		{name: "regular user", header: "Alice", wantOK: true, wantID: "user_alice"},
		{name: "admin", header: "admin", wantOK: true, wantID: "user_admin", wantAdmin: true},
		{name: "root", header: "ROOT", wantOK: true, wantID: "user_root", wantAdmin: true},
		{name: "whitespace only", header: "   ", wantOK: false},
	}
	for _, tc := range tests {
		var got models.User
		var ok bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok = httputil.GetUser(r)
		})

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("X-Username", tc.header)
		}
		Identity()(next).ServeHTTP(httptest.NewRecorder(), r)

		if ok != tc.wantOK {
			t.Errorf("%s: identity present = %v, want %v", tc.name, ok, tc.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if got.ID != tc.wantID || got.IsAdmin != tc.wantAdmin {
			t.Errorf("%s: user = %+v, want id %q admin %v", tc.name, got, tc.wantID, tc.wantAdmin)
		}
	}
}
