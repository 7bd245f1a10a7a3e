package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/traylist/internal/bridge"
	"golang.org/x/oauth2"
)

// SignInResult contains the result of a completed sign-in flow: the
// signed-in event for the auth bridge and the exchanged token backing a
// resolver.
type SignInResult struct {
	Event bridge.Event
	Token *oauth2.Token
	err   error
}

func (r SignInResult) Error() error {
	return r.err
}

// SignInHandler handles the host application's sign-in redirect for the
// authorization code flow. Implements the Handler interface for
// registration with a Router.
type SignInHandler struct {
	config      *oauth2.Config
	state       string
	resultChan  chan SignInResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewSignInHandler creates a sign-in handler with the given OAuth2 config
// and state token. The state token should be cryptographically random for
// CSRF protection.
func NewSignInHandler(config *oauth2.Config, state string) *SignInHandler {
	return &SignInHandler{
		config:     config,
		state:      state,
		resultChan: make(chan SignInResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *SignInHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the sign-in redirect.
//
// Validates the state parameter, exchanges the authorization code for
// tokens, and sends a signed-in event through the result channel. The
// redirect carries the subject's identity in uid/email/name query
// parameters; uid falls back to email when the host omits it.
func (h *SignInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	state := r.URL.Query().Get("state")
	if state != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.Send(SignInResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		err := fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)
		h.Send(SignInResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(context.Background(), code)
	if err != nil {
		h.Send(SignInResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	subject := r.URL.Query().Get("uid")
	email := r.URL.Query().Get("email")
	if subject == "" {
		subject = email
	}

	h.Send(SignInResult{
		Event: bridge.Event{
			SignedIn:    true,
			SubjectID:   subject,
			Email:       email,
			DisplayName: r.URL.Query().Get("name"),
		},
		Token: token,
	})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Sign-In Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #2563EB; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Signed In</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the sign-in result through the channel (only once).
func (h *SignInHandler) Send(result SignInResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving sign-in completion.
//
// Channel will receive exactly one result and then be closed.
func (h *SignInHandler) Result() <-chan SignInResult {
	return h.resultChan
}
