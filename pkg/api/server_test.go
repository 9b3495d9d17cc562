package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/james-see/voicebridge/pkg/config"
	"github.com/james-see/voicebridge/pkg/midiexport"
	"github.com/rs/zerolog"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(config.Default(), zerolog.Nop())
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter()
	for _, path := range []string{"/health", "/api/v1/health"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("GET %s = %d", path, w.Code)
			}
			if !strings.Contains(w.Body.String(), "voicebridge") {
				t.Errorf("GET %s body = %s", path, w.Body.String())
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/voicings", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("Allow-Methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestCORSSimpleRequest(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("GET with Origin = %d, Allow-Origin %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestVoicings(t *testing.T) {
	r := newTestRouter()
	w := post(r, "/api/v1/voicings", `{"pattern": "Cmaj7 G7", "range_low": "C3", "range_high": "C5"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /voicings = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Cycles int         `json:"cycles"`
		Events []EventJSON `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Events) != 8 {
		t.Fatalf("got %d events, want 8", len(resp.Events))
	}

	want := []string{"E3", "G3", "B3", "D4", "F3", "A3", "B3", "E4"}
	for i, ev := range resp.Events {
		if ev.Note != want[i] {
			t.Errorf("event %d note = %s, want %s", i, ev.Note, want[i])
		}
	}
	first, last := resp.Events[0], resp.Events[7]
	if first.Whole == nil || first.Whole.Begin != "0" || first.Whole.End != "1/2" {
		t.Errorf("first whole = %+v, want 0..1/2", first.Whole)
	}
	if last.Part.Begin != "1/2" || last.Part.End != "1" {
		t.Errorf("last part = %+v, want 1/2..1", last.Part)
	}
}

func TestVoicingsErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing pattern", `{}`},
		{"bad json", `{"pattern":`},
		{"syntax error", `{"pattern": "[Cmaj7 G7"}`},
		{"unknown dictionary", `{"pattern": "C", "dictionary": "nope"}`},
		{"bad range", `{"pattern": "C", "range_low": "H2"}`},
		{"too many cycles", `{"pattern": "C", "cycles": 1000}`},
	}

	r := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(r, "/api/v1/voicings", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("POST /voicings = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestExportMIDI(t *testing.T) {
	r := newTestRouter()
	w := post(r, "/api/v1/export/midi", `{"pattern": "<Dm7 G7> Cmaj7", "cycles": 2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /export/midi = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/midi" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("MThd")) {
		t.Fatal("response is not a MIDI file")
	}
	notes, _, err := midiexport.Decode(w.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 16 {
		t.Errorf("decoded %d notes, want 16", len(notes))
	}
}

func TestExportText(t *testing.T) {
	r := newTestRouter()
	w := post(r, "/api/v1/export/text", `{"pattern": "Cmaj7"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /export/text = %d: %s", w.Code, w.Body.String())
	}
	if lines := strings.Count(w.Body.String(), "\n"); lines != 4 {
		t.Errorf("listing has %d lines, want 4", lines)
	}
}

func TestExportErrors(t *testing.T) {
	r := newTestRouter()
	if w := post(r, "/api/v1/export/seq", `{"pattern": "C"}`); w.Code != http.StatusBadRequest {
		t.Errorf("unknown format = %d, want 400", w.Code)
	}
	// every chord is unknown, so there is nothing to export
	if w := post(r, "/api/v1/export/midi", `{"pattern": "Xyz"}`); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty export = %d, want 422", w.Code)
	}
}

func TestListDictionaries(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dictionaries", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /dictionaries = %d", w.Code)
	}
	var resp struct {
		Dictionaries map[string][]string `json:"dictionaries"`
		Pickers      []string            `json:"pickers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"lefthand", "triads", "guidetones"} {
		if len(resp.Dictionaries[name]) == 0 {
			t.Errorf("dictionary %s missing or empty", name)
		}
	}
	if len(resp.Pickers) == 0 {
		t.Error("no pickers listed")
	}
}
