package handlers

import (
	"errors"
	"net/http"
	"time"

	"leadline/database/repository/callrecords"
	"leadline/models"
	"leadline/utils"

	"github.com/gin-gonic/gin"
)

const defaultScheduledWindow = 7 * 24 * time.Hour

// HistoryHandler serves stored call results to operators.
type HistoryHandler struct {
	Repo callrecords.CallRecordRepository
}

func NewHistoryHandler(repo callrecords.CallRecordRepository) *HistoryHandler {
	return &HistoryHandler{Repo: repo}
}

// CallsByPhoneHandler lists every call placed to ?phone=, newest first.
func (h *HistoryHandler) CallsByPhoneHandler(c *gin.Context) {
	phone := utils.NormalizePhone(c.Query("phone"))
	if phone == "" {
		utils.JSONError(c, http.StatusBadRequest, "phone is required", "")
		return
	}
	records, err := h.Repo.ListByPhone(c.Request.Context(), phone)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load call history", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": nonNil(records)})
}

// ScheduledHandler lists calls that booked a meeting since ?since= (RFC3339),
// defaulting to the last seven days.
func (h *HistoryHandler) ScheduledHandler(c *gin.Context) {
	since := time.Now().Add(-defaultScheduledWindow)
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "since must be RFC3339", err.Error())
			return
		}
		since = t
	}
	records, err := h.Repo.ListScheduledSince(c.Request.Context(), since)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load scheduled calls", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"since": since.UTC(), "calls": nonNil(records)})
}

// CallRecordHandler returns the stored result for one call ID.
func (h *HistoryHandler) CallRecordHandler(c *gin.Context) {
	rec, err := h.Repo.GetByCallID(c.Request.Context(), c.Param("callID"))
	if errors.Is(err, callrecords.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "call record not found", "")
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load call record", err.Error())
		return
	}
	c.JSON(http.StatusOK, rec)
}

func nonNil(records []models.CallResult) []models.CallResult {
	if records == nil {
		return []models.CallResult{}
	}
	return records
}
