package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang.org/x/oauth2"
)

func TestBasicRouterMethodFiltering(t *testing.T) {
	router := NewBasicRouter()
	router.Handle("GET", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	}))

	t.Run("matching method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("unexpected response: %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestBasicRouterMiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router := NewBasicRouter()
	router.Use(mw("first"), mw("second"))
	router.Handle("GET", "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("unexpected middleware order: %v", order)
	}
}

func tokenEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newSignInHandler(t *testing.T) *SignInHandler {
	t.Helper()
	endpoint := tokenEndpoint(t)
	config := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: endpoint.URL},
	}
	return NewSignInHandler(config, "state-abc")
}

func callbackRequest(state, code string, extra url.Values) *http.Request {
	q := url.Values{}
	if state != "" {
		q.Set("state", state)
	}
	if code != "" {
		q.Set("code", code)
	}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return httptest.NewRequest("GET", "/callback?"+q.Encode(), nil)
}

func TestSignInCallbackSuccess(t *testing.T) {
	handler := newSignInHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, callbackRequest("state-abc", "code-1", url.Values{
		"uid":   {"u1"},
		"email": {"u1@example.com"},
		"name":  {"User One"},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	result := <-handler.Result()
	if err := result.Error(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Event.SignedIn || result.Event.SubjectID != "u1" || result.Event.Email != "u1@example.com" {
		t.Errorf("unexpected event: %+v", result.Event)
	}
	if result.Token == nil || result.Token.AccessToken != "at-123" {
		t.Errorf("unexpected token: %+v", result.Token)
	}
}

func TestSignInCallbackSubjectFallsBackToEmail(t *testing.T) {
	handler := newSignInHandler(t)

	handler.ServeHTTP(httptest.NewRecorder(), callbackRequest("state-abc", "code-1", url.Values{
		"email": {"u1@example.com"},
	}))

	result := <-handler.Result()
	if result.Event.SubjectID != "u1@example.com" {
		t.Errorf("expected email fallback, got %q", result.Event.SubjectID)
	}
}

func TestSignInCallbackRejectsBadState(t *testing.T) {
	handler := newSignInHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, callbackRequest("wrong", "code-1", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if err := (<-handler.Result()).Error(); err == nil {
		t.Error("expected error result for bad state")
	}
}

func TestSignInCallbackRejectsMissingCode(t *testing.T) {
	handler := newSignInHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, callbackRequest("state-abc", "", url.Values{
		"error": {"access_denied"},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if err := (<-handler.Result()).Error(); err == nil {
		t.Error("expected error result for missing code")
	}
}

func TestSignInCallbackReplayBlocked(t *testing.T) {
	handler := newSignInHandler(t)

	handler.ServeHTTP(httptest.NewRecorder(), callbackRequest("state-abc", "code-1", url.Values{"uid": {"u1"}}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, callbackRequest("state-abc", "code-2", url.Values{"uid": {"u2"}}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected replay to be rejected, got %d", rec.Code)
	}

	result := <-handler.Result()
	if result.Event.SubjectID != "u1" {
		t.Errorf("expected first callback to win, got %q", result.Event.SubjectID)
	}
}
