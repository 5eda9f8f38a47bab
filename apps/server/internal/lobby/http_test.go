package lobby

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type createResponse struct {
	Game    Summary `json:"game"`
	HostKey string  `json:"host_key"`
}

func newTestMux() *http.ServeMux {
	mux := http.NewServeMux()
	NewHTTPHandler(New(nil), "http://example.test").RegisterRoutes(mux)
	return mux
}

func createGame(t *testing.T, mux *http.ServeMux, body string) createResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/games", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/games status %d: %s", rec.Code, rec.Body.String())
	}
	var resp createResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create err: %v", err)
	}
	return resp
}

func TestHTTP_CreateRandomCastAndAdvance(t *testing.T) {
	mux := newTestMux()
	created := createGame(t, mux, `{"random_players":7,"roles":{"wolf":2,"seer":1,"medium":1},"rng":{"seed":9}}`)
	if created.Game.Players != 7 || created.HostKey == "" {
		t.Fatalf("unexpected create response %+v", created)
	}
	base := "/api/games/" + created.Game.GameID

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, base+"/advance", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("advance without key status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, base+"/advance", nil)
	req.Header.Set(hostKeyHeader, created.HostKey)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("advance status %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, base+"/log", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("log status %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("innerThought")) {
		t.Fatalf("public log contains inner thoughts")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, base+"/log?god=1", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("god log without key status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, base+"/graph/1?format=dot", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "digraph round1 {") {
		t.Fatalf("graph status %d body %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, base+"/graph/9", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("graph for unplayed round status %d", rec.Code)
	}
}

func TestHTTP_QRIsPNG(t *testing.T) {
	mux := newTestMux()
	created := createGame(t, mux, `{"random_players":5,"roles":{"wolf":1,"seer":1}}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/games/"+created.Game.GameID+"/qr", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("qr status %d type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("qr body is not a PNG")
	}
}

func TestHTTP_Errors(t *testing.T) {
	mux := newTestMux()
	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/games", `{"seats":[]}`, http.StatusBadRequest},
		{http.MethodPost, "/api/games", `{"bogus":1}`, http.StatusBadRequest},
		{http.MethodGet, "/api/games/missing", "", http.StatusNotFound},
		{http.MethodDelete, "/api/games", "", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
		if rec.Code != tc.want {
			t.Fatalf("%s %s: status %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/games", nil))
	var list struct {
		Items []Summary `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list err: %v", err)
	}
	if len(list.Items) != 0 {
		t.Fatalf("failed creates left %d games", len(list.Items))
	}
}
