package htmx

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if IsRequest(req) {
		t.Fatal("plain request must not be treated as HTMX")
	}
	req.Header.Set("HX-Request", "TRUE")
	if !IsRequest(req) {
		t.Fatal("HX-Request header should be matched case-insensitively")
	}
}

func TestTrigger(t *testing.T) {
	recorder := httptest.NewRecorder()
	Trigger(recorder)
	if recorder.Header().Get("HX-Trigger") != "" {
		t.Fatal("no events must leave the header unset")
	}

	Trigger(recorder, RefreshThemes, "paletteCleared")
	if got := recorder.Header().Get("HX-Trigger"); got != "refreshThemes,paletteCleared" {
		t.Fatalf("unexpected HX-Trigger %q", got)
	}
}
