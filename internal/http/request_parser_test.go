package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseChatRequest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		want       string
		wantStatus int
	}{
		{name: "valid", body: `{"message":"ran 5 km"}`, want: "ran 5 km"},
		{name: "message kept verbatim", body: `{"message":"  Drank 2 L "}`, want: "  Drank 2 L "},
		{name: "extra fields ignored", body: `{"message":"read 1 book","mood":"good"}`, want: "read 1 book"},
		{name: "empty string passes parsing", body: `{"message":""}`, want: ""},
		{name: "malformed JSON", body: `{"message":`, wantStatus: http.StatusBadRequest},
		{name: "empty body", body: ``, wantStatus: http.StatusBadRequest},
		{name: "missing message", body: `{"text":"hi"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "null message", body: `{"message":null}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "wrong type", body: `{"message":5}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "too large", body: `{"message":"` + strings.Repeat("a", maxBodyBytes) + `"}`, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body))
			got, err := ParseChatRequest(req)

			if tt.wantStatus != 0 {
				var reqErr *RequestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("expected RequestError, got %v", err)
				}
				if reqErr.Status != tt.wantStatus {
					t.Fatalf("status = %d, want %d", reqErr.Status, tt.wantStatus)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Message != tt.want {
				t.Errorf("Message = %q, want %q", got.Message, tt.want)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", defaultLogsLimit, false},
		{"limit=5", 5, false},
		{"limit=0", 0, false},
		{"limit=1000", 1000, false},
		{"limit=%20%207", 7, false},
		{"limit=-1", 0, true},
		{"limit=1001", 0, true},
		{"limit=ten", 0, true},
	}

	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := ParseLimit(q)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLimit(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLimit(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}
