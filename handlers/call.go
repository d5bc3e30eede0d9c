package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"leadline/models"
	"leadline/services/call"
	"leadline/services/dispatch"
	"leadline/utils"

	"github.com/gin-gonic/gin"
)

// CallHandler exposes the booking tools to the conversational channel.
type CallHandler struct {
	Service call.CallService
}

// NewCallHandler creates a new CallHandler.
func NewCallHandler(svc call.CallService) *CallHandler {
	return &CallHandler{Service: svc}
}

type openCallInput struct {
	Room     string          `json:"room"`
	Metadata json.RawMessage `json:"metadata" binding:"required"`
}

// OpenCallHandler registers a call once the remote party has picked up. The
// metadata is the job blob, either as an object or as a JSON-encoded string.
func (h *CallHandler) OpenCallHandler(c *gin.Context) {
	var input openCallInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	raw := []byte(input.Metadata)
	var encoded string
	if json.Unmarshal(raw, &encoded) == nil {
		raw = []byte(encoded)
	}
	job, err := dispatch.ParseJob(raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid job metadata", err.Error())
		return
	}

	sess, err := h.Service.Open(c.Request.Context(), input.Room, job)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to open call", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"call_id": sess.ID,
		"outcome": sess.Outcome(),
	})
}

type checkAvailabilityInput struct {
	DateTime string `json:"dateTime"`
}

// CheckAvailabilityHandler answers "is this time open". Calendar problems
// never surface as errors; the answer is always speakable.
func (h *CallHandler) CheckAvailabilityHandler(c *gin.Context) {
	var input checkAvailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	answer, err := h.Service.CheckAvailability(c.Request.Context(), c.Param("callID"), input.DateTime)
	if err != nil {
		h.callError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

type scheduleInput struct {
	Email    string `json:"email"`
	DateTime string `json:"dateTime"`
}

// ScheduleMeetingHandler books the meeting and sends the invite.
func (h *CallHandler) ScheduleMeetingHandler(c *gin.Context) {
	var input scheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	answer, err := h.Service.Schedule(c.Request.Context(), c.Param("callID"), input.Email, input.DateTime)
	if err != nil {
		h.callError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// TranscriptHandler appends one utterance to the call transcript.
func (h *CallHandler) TranscriptHandler(c *gin.Context) {
	var entry models.TranscriptEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid transcript entry", err.Error())
		return
	}
	if err := h.Service.AddTranscript(c.Param("callID"), entry); err != nil {
		h.callError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TransferCallHandler hands the caller to a human. The answer is spoken;
// a missing transfer number or a failed transfer is not an HTTP error.
func (h *CallHandler) TransferCallHandler(c *gin.Context) {
	answer, err := h.Service.Transfer(c.Request.Context(), c.Param("callID"))
	if err != nil {
		h.callError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

type endCallInput struct {
	Status string `json:"status" binding:"required"`
	Hangup bool   `json:"hangup"`
}

// EndCallHandler finalizes the call. Repeated calls return the first outcome.
func (h *CallHandler) EndCallHandler(c *gin.Context) {
	var input endCallInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	status := models.CallStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if !status.Terminal() {
		utils.JSONError(c, http.StatusBadRequest, "invalid status", "status must be a terminal call status")
		return
	}
	outcome, err := h.Service.End(c.Request.Context(), c.Param("callID"), status, input.Hangup)
	if err != nil {
		h.callError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// GetCallHandler returns the current outcome of a call.
func (h *CallHandler) GetCallHandler(c *gin.Context) {
	outcome, err := h.Service.Outcome(c.Param("callID"))
	if err != nil {
		h.callError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *CallHandler) callError(c *gin.Context, err error) {
	if errors.Is(err, call.ErrCallNotFound) {
		utils.JSONError(c, http.StatusNotFound, "call not found", c.Param("callID"))
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, "call operation failed", err.Error())
}
