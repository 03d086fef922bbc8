package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallmag/internal/reqctx"
	"wallmag/internal/services"
	"wallmag/internal/utils"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeAuth struct {
	claims *utils.TokenClaims
	err    error
	got    string
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*utils.TokenClaims, error) {
	f.got = token
	return f.claims, f.err
}

func TestSessionAuth(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	auth := &fakeAuth{claims: &utils.TokenClaims{Subject: "12345", Role: "editor", ID: "jti-1", ExpiresAt: exp}}

	var gotID, gotRole string
	var gotSession reqctx.Session
	h := SessionAuth(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = reqctx.GetIDNumber(r.Context())
		gotRole, _ = reqctx.GetRole(r.Context())
		gotSession, _ = reqctx.GetSession(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if auth.got != "cookie-token" || gotID != "12345" || gotRole != "editor" || gotSession.ID != "jti-1" {
		t.Fatalf("контекст не заполнен: token=%q id=%q role=%q session=%+v", auth.got, gotID, gotRole, gotSession)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if auth.got != "header-token" {
		t.Fatalf("Bearer-токен не прочитан: %q", auth.got)
	}
}

func TestSessionAuth_Rejects(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("обработчик не должен вызываться")
	})

	rec := httptest.NewRecorder()
	SessionAuth(&fakeAuth{})(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("без сессии: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "revoked"})
	rec = httptest.NewRecorder()
	SessionAuth(&fakeAuth{err: services.ErrUnauthorized})(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("отозванная сессия: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "x"})
	rec = httptest.NewRecorder()
	SessionAuth(&fakeAuth{err: errors.New("redis down")})(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("ошибка денилиста: %d", rec.Code)
	}
}

func TestOnlyRole(t *testing.T) {
	h := OnlyRole("editor")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(reqctx.WithRole(req.Context(), "reader")))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("reader: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(reqctx.WithRole(req.Context(), "editor")))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("editor: %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = reqctx.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("request id не выставлен: %q / %q", seen, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc" {
		t.Fatalf("входящий request id потерян: %q", seen)
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "{\"message\":\"Internal Server Error\"}\n" {
		t.Fatalf("тело = %q", rec.Body.String())
	}
}

func TestHTTPMetricsRecordsRouteTemplate(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("NewHTTPMetrics: %v", err)
	}

	router := mux.NewRouter()
	router.Use(metrics.Handler)
	router.HandleFunc("/api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/posts/p1", nil))

	labels := prometheus.Labels{"method": http.MethodGet, "route": "/api/posts/{id}", "status": "404"}
	if got := testutil.ToFloat64(metrics.Requests.With(labels)); got != 1 {
		t.Fatalf("requests_total = %f", got)
	}
	if got := testutil.ToFloat64(metrics.InFlight); got != 0 {
		t.Fatalf("in_flight = %f", got)
	}

	again, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("повторная регистрация: %v", err)
	}
	if again.Requests != metrics.Requests {
		t.Fatal("ожидался уже зарегистрированный коллектор")
	}
}
