// File: leadline/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Call tool endpoints
	OpenCallHandler          gin.HandlerFunc
	CheckAvailabilityHandler gin.HandlerFunc
	ScheduleMeetingHandler   gin.HandlerFunc
	TranscriptHandler        gin.HandlerFunc
	TransferCallHandler      gin.HandlerFunc
	EndCallHandler           gin.HandlerFunc
	GetCallHandler           gin.HandlerFunc

	// Operator endpoints
	CallsByPhoneHandler  gin.HandlerFunc
	ScheduledHandler     gin.HandlerFunc
	CallRecordHandler    gin.HandlerFunc
	OAuthStartHandler    gin.HandlerFunc
	OAuthCallbackHandler gin.HandlerFunc
	HealthHandler        gin.HandlerFunc
}

// NewHandlerBundle wires the call, history and OAuth handlers into a bundle.
func NewHandlerBundle(calls *CallHandler, history *HistoryHandler, oauth *OAuthHandler, health gin.HandlerFunc) *HandlerBundle {
	return &HandlerBundle{
		OpenCallHandler:          calls.OpenCallHandler,
		CheckAvailabilityHandler: calls.CheckAvailabilityHandler,
		ScheduleMeetingHandler:   calls.ScheduleMeetingHandler,
		TranscriptHandler:        calls.TranscriptHandler,
		TransferCallHandler:      calls.TransferCallHandler,
		EndCallHandler:           calls.EndCallHandler,
		GetCallHandler:           calls.GetCallHandler,
		CallsByPhoneHandler:      history.CallsByPhoneHandler,
		ScheduledHandler:         history.ScheduledHandler,
		CallRecordHandler:        history.CallRecordHandler,
		OAuthStartHandler:        oauth.StartHandler,
		OAuthCallbackHandler:     oauth.CallbackHandler,
		HealthHandler:            health,
	}
}
