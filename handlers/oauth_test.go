package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"leadline/services/googleauth"
)

type memTokens struct{ tok *oauth2.Token }

func (m *memTokens) Load(context.Context) (*oauth2.Token, error) {
	if m.tok == nil {
		return nil, googleauth.ErrTokenNotFound
	}
	return m.tok, nil
}

func (m *memTokens) Save(_ context.Context, tok *oauth2.Token) error {
	m.tok = tok
	return nil
}

func TestOAuthConsentFlow(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"granted","refresh_token":"r1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	store := &memTokens{}
	auth := googleauth.NewAuthenticator("calendar", &oauth2.Config{
		ClientID:    "client",
		Endpoint:    oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenSrv.URL},
		RedirectURL: "http://localhost/oauth/google/callback",
	}, store, nil)
	h := NewOAuthHandler(auth)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/start", h.StartHandler)
	r.GET("/callback", h.CallbackHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/start?service=calendar", nil))
	if w.Code != http.StatusFound {
		t.Fatalf("start: status %d", w.Code)
	}
	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" || loc.Query().Get("access_type") != "offline" {
		t.Fatalf("redirect = %s", loc)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state="+state+"&code=abc", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("callback: status %d body %s", w.Code, w.Body)
	}
	if store.tok == nil || store.tok.AccessToken != "granted" {
		t.Errorf("stored token = %+v", store.tok)
	}
	if tok, err := auth.Token(); err != nil || tok.AccessToken != "granted" {
		t.Errorf("Token after consent = %v, %v", tok, err)
	}

	// A state is single use.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state="+state+"&code=abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("replayed callback: status %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/start?service=drive", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown service: status %d, want 404", w.Code)
	}
}
