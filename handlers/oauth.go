package handlers

import (
	"net/http"
	"sync"
	"time"

	"leadline/services/googleauth"
	"leadline/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const oauthStateTTL = 10 * time.Minute

// OAuthHandler lets an operator grant the service offline access to Google
// APIs. Each authenticator is keyed by its name ("calendar", "sheets").
type OAuthHandler struct {
	Auth map[string]*googleauth.Authenticator

	mu     sync.Mutex
	states map[string]pendingConsent
}

type pendingConsent struct {
	service string
	expires time.Time
}

func NewOAuthHandler(auths ...*googleauth.Authenticator) *OAuthHandler {
	h := &OAuthHandler{
		Auth:   make(map[string]*googleauth.Authenticator, len(auths)),
		states: make(map[string]pendingConsent),
	}
	for _, a := range auths {
		h.Auth[a.Name()] = a
	}
	return h
}

// StartHandler redirects to the Google consent page for ?service=.
func (h *OAuthHandler) StartHandler(c *gin.Context) {
	service := c.DefaultQuery("service", "calendar")
	auth, ok := h.Auth[service]
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "unknown service", service)
		return
	}

	state := uuid.New().String()
	h.mu.Lock()
	now := time.Now()
	for k, p := range h.states {
		if now.After(p.expires) {
			delete(h.states, k)
		}
	}
	h.states[state] = pendingConsent{service: service, expires: now.Add(oauthStateTTL)}
	h.mu.Unlock()

	c.Redirect(http.StatusFound, auth.AuthCodeURL(state))
}

// CallbackHandler stores the token granted by the consent page.
func (h *OAuthHandler) CallbackHandler(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")

	h.mu.Lock()
	pending, ok := h.states[state]
	delete(h.states, state)
	h.mu.Unlock()

	if !ok || time.Now().After(pending.expires) {
		utils.JSONError(c, http.StatusBadRequest, "invalid or expired state", "")
		return
	}
	if code == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing code", c.Query("error"))
		return
	}
	if err := h.Auth[pending.service].Exchange(c.Request.Context(), code); err != nil {
		utils.JSONError(c, http.StatusBadGateway, "token exchange failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": pending.service, "status": "authorized"})
}
