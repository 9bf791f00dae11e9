package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"HealthMate/internal/config"
)

// withTempConfig переопределяет пользовательские каталоги на время теста,
// чтобы артефакты (токен/база) создавались в temp.
func withTempConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return &config.Config{
		BackendURL:     baseURL,
		StoreURL:       baseURL,
		PagesFolder:    "healthmate/pages",
		ClientDBPath:   filepath.Join(dir, "HealthMate", "client.sqlite"),
		TokenFile:      filepath.Join(dir, "HealthMate", "token"),
		TokenTTL:       time.Hour,
		RequestTimeout: 5 * time.Second,
		UploadTimeout:  5 * time.Second,
		LogLevel:       "error",
	}
}

// перехват вывода на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}

// fakeBackend имитирует API HealthMate и хранилище файлов.
type fakeBackend struct {
	mu      sync.Mutex
	calls   []string
	extract int
	created []map[string]any
}

const goodToken = "tok-1"

func (f *fakeBackend) record(r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.mu.Unlock()
}

func (f *fakeBackend) seen(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
			return
		}
		next(w, r)
	}
}

func (f *fakeBackend) start(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.record(r)
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/api/user", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"_id": "u1", "name": "Ali", "email": "ali@example.com", "isVerified": true})
	}))
	r.Post("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		switch in["password"] {
		case "pw":
			writeJSON(w, http.StatusOK, map[string]any{
				"token": goodToken, "message": "Welcome",
				"user": map[string]any{"_id": "u1", "name": "Ali", "email": in["email"]},
			})
		case "unverified":
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Please verify your email"})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
		}
	})
	for _, p := range []string{"/api/register", "/api/verify-otp", "/api/forget-password", "/api/reset-password"} {
		r.Post(p, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"message": "ok " + r.URL.Path})
		})
	}

	r.Get("/api/files/signed-params", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"cloudName": "demo", "apiKey": "k", "timestamp": 1700000000, "signature": "sig", "folder": "healthmate/u1",
		})
	}))
	r.Post("/{cloud}/image/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]string{"message": "unexpected auth"}})
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil || r.FormValue("signature") != "sig" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]string{"message": "bad form"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"secure_url": "https://cdn/healthmate/u1/scan.png", "public_id": "healthmate/u1/scan", "format": "png",
		})
	})
	r.Post("/api/files/extract-pdf-pages", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.extract++
		f.mu.Unlock()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "extractor down"})
	}))
	r.Post("/api/reports/upload", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		f.created = append(f.created, in)
		f.mu.Unlock()
		in["_id"] = "r1"
		writeJSON(w, http.StatusCreated, map[string]any{"report": in})
	}))
	r.Get("/api/reports", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": []map[string]any{
			{"_id": "r1", "title": "CBC", "fileType": "image", "dateTaken": "2024-01-01"},
		}})
	}))
	r.Get("/api/reports/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "r1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Report not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"report": map[string]any{
				"_id": "r1", "title": "CBC", "fileType": "image", "dateTaken": "2024-01-01",
				"tags": []string{"lab"}, "fileUrl": "https://cdn/healthmate/u1/scan.png", "filePublicId": "healthmate/u1/scan",
			},
			"aiInsight": map[string]any{"languageSummaries": map[string]string{"en": "All values normal", "ur": "سب ٹھیک ہے"}},
		})
	}))
	r.Post("/api/reports/{id}/analyze", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}))
	r.Post("/api/reports/{id}/feedback", f.authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	r.Delete("/api/reports/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	r.Get("/api/files/pages", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": []map[string]any{
			{"secure_url": "https://cdn/p1.png", "public_id": "p1", "page": 1},
			{"secure_url": "https://cdn/p2.png", "public_id": "p2", "page": 2},
		}})
	}))
	r.Post("/api/files/compose-pdf", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		writeJSON(w, http.StatusOK, map[string]string{"pdfUrl": "https://cdn/" + in["tag"] + ".pdf"})
	}))

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}
