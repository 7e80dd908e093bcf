package suggestions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matchminds/backend/internal/models"
	"github.com/matchminds/backend/internal/session"
)

func TestGetSuggestions(t *testing.T) {
	issuer := session.NewIssuer([]byte("secret"))
	token, err := issuer.Issue(models.Session{
		CheckID: "c1", Friend1Name: "Ana Lima", Friend2Name: "Dev Patel", Model: testModel,
	})
	if err != nil {
		t.Fatal(err)
	}
	h := NewHandler(NewSelector(loadTestRows(t), testModel, 1), issuer)

	tests := []struct {
		name   string
		url    string
		header string
		status int
	}{
		{"bearer", "/", "Bearer " + token, http.StatusOK},
		{"query", "/?session=" + token, "", http.StatusOK},
		{"missing", "/", "", http.StatusUnauthorized},
		{"bad scheme", "/", "Basic " + token, http.StatusUnauthorized},
		{"tampered", "/?session=" + token + "x", "", http.StatusUnauthorized},
		{"other secret", "/", "Bearer " + mustIssue(t, []byte("other"), testModel), http.StatusUnauthorized},
		{"retrained model", "/", "Bearer " + mustIssue(t, []byte("secret"), "m0"), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.GetSuggestions(rr, req)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.status, rr.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var resp models.SuggestionsResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Friend1.For != "Ana Lima" || resp.Friend2.For != "Dev Patel" {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}

func mustIssue(t *testing.T, secret []byte, modelFingerprint string) string {
	t.Helper()
	tok, err := session.NewIssuer(secret).Issue(models.Session{CheckID: "x", Model: modelFingerprint})
	if err != nil {
		t.Fatal(err)
	}
	return tok
}
