package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"leadline/models"
	"leadline/services/calendar"
	"leadline/services/call"
	"leadline/services/scheduling"
)

type freeCalendar struct{}

func (freeCalendar) IsFree(context.Context, models.TimeSlot) bool { return true }

func (freeCalendar) FindNextFree(_ context.Context, from time.Time, _ time.Duration) time.Time {
	return from
}

func (freeCalendar) Book(_ context.Context, slot models.TimeSlot, attendee, _ string) (*calendar.BookingReceipt, error) {
	return &calendar.BookingReceipt{EventID: "evt-1", Slot: slot, Attendee: attendee}, nil
}

func newTestRouter() (*gin.Engine, *call.DefaultCallService) {
	gin.SetMode(gin.TestMode)
	svc := &call.DefaultCallService{
		Resolver: scheduling.NewResolver(time.FixedZone("PST", -8*3600), 14),
		Gateway:  freeCalendar{},
		Duration: 30 * time.Minute,
		Summary:  "Consultation",
	}
	h := NewCallHandler(svc)

	r := gin.New()
	api := r.Group("/api/calls")
	api.POST("", h.OpenCallHandler)
	api.GET("/:callID", h.GetCallHandler)
	api.POST("/:callID/check-availability", h.CheckAvailabilityHandler)
	api.POST("/:callID/schedule", h.ScheduleMeetingHandler)
	api.POST("/:callID/transcript", h.TranscriptHandler)
	api.POST("/:callID/transfer", h.TransferCallHandler)
	api.POST("/:callID/end", h.EndCallHandler)
	r.GET("/health", HealthHandler(svc))
	return r, svc
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func openCall(t *testing.T, r http.Handler, metadata any) string {
	t.Helper()
	w := do(r, http.MethodPost, "/api/calls", gin.H{"room": "room-1", "metadata": metadata})
	if w.Code != http.StatusCreated {
		t.Fatalf("open call: status %d body %s", w.Code, w.Body)
	}
	var resp struct {
		CallID string `json:"call_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.CallID == "" {
		t.Fatalf("open call response %s: %v", w.Body, err)
	}
	return resp.CallID
}

func TestCallToolFlow(t *testing.T) {
	r, svc := newTestRouter()

	id := openCall(t, r, `{"phone_number":"+15551234567","name":"Ann","row_id":3}`)

	w := do(r, http.MethodPost, "/api/calls/"+id+"/check-availability", gin.H{"dateTime": "mornings"})
	if w.Code != http.StatusOK {
		t.Fatalf("check: status %d", w.Code)
	}
	var avail models.AvailabilityAnswer
	json.Unmarshal(w.Body.Bytes(), &avail)
	if !avail.Available || len(avail.SuggestedTimes) != 3 {
		t.Errorf("availability = %+v", avail)
	}

	w = do(r, http.MethodPost, "/api/calls/"+id+"/transcript", gin.H{"speaker": "Customer", "text": "ten works", "is_final": true})
	if w.Code != http.StatusNoContent {
		t.Errorf("transcript: status %d body %s", w.Code, w.Body)
	}

	w = do(r, http.MethodPost, "/api/calls/"+id+"/schedule", gin.H{"email": "ann at example dot com", "dateTime": "tomorrow at 10am"})
	var booking models.BookingAnswer
	json.Unmarshal(w.Body.Bytes(), &booking)
	if w.Code != http.StatusOK || !booking.Scheduled || booking.Email != "ann@example.com" {
		t.Fatalf("schedule: status %d answer %+v", w.Code, booking)
	}

	w = do(r, http.MethodPost, "/api/calls/"+id+"/end", gin.H{"status": "Completed"})
	var outcome models.CallOutcome
	json.Unmarshal(w.Body.Bytes(), &outcome)
	if w.Code != http.StatusOK || outcome.Status != models.CallCompleted || !outcome.Appointment.Scheduled {
		t.Fatalf("end: status %d outcome %+v", w.Code, outcome)
	}

	// A second end returns the first outcome.
	w = do(r, http.MethodPost, "/api/calls/"+id+"/end", gin.H{"status": "failed"})
	json.Unmarshal(w.Body.Bytes(), &outcome)
	if outcome.Status != models.CallCompleted {
		t.Errorf("second end status = %s, want completed", outcome.Status)
	}

	w = do(r, http.MethodGet, "/api/calls/"+id, nil)
	if w.Code != http.StatusOK {
		t.Errorf("get: status %d", w.Code)
	}
	if svc.Active() != 0 {
		t.Errorf("Active = %d, want 0", svc.Active())
	}
}

type stubTransferrer struct{ to string }

func (s *stubTransferrer) TransferParticipant(_ context.Context, _, _, to string) error {
	s.to = to
	return nil
}

func TestTransferCallHandler(t *testing.T) {
	r, svc := newTestRouter()

	// No transfer number: the call continues.
	id := openCall(t, r, `{"phone_number":"+15551234567"}`)
	w := do(r, http.MethodPost, "/api/calls/"+id+"/transfer", nil)
	var ans models.TransferAnswer
	json.Unmarshal(w.Body.Bytes(), &ans)
	if w.Code != http.StatusOK || ans.Transferred || ans.Message != "cannot transfer call" {
		t.Fatalf("transfer without number: status %d answer %+v", w.Code, ans)
	}
	if svc.Active() != 1 {
		t.Errorf("Active = %d, want 1", svc.Active())
	}

	tr := &stubTransferrer{}
	svc.Transferrer = tr
	id = openCall(t, r, `{"phone_number":"+15557654321","transfer_to":"+15550009999"}`)
	w = do(r, http.MethodPost, "/api/calls/"+id+"/transfer", nil)
	ans = models.TransferAnswer{}
	json.Unmarshal(w.Body.Bytes(), &ans)
	if w.Code != http.StatusOK || !ans.Transferred || ans.Outcome == nil || ans.Outcome.Status != models.CallTransferred {
		t.Fatalf("transfer: status %d answer %+v", w.Code, ans)
	}
	if tr.to != "+15550009999" {
		t.Errorf("transferred to %q", tr.to)
	}

	if w := do(r, http.MethodPost, "/api/calls/nope/transfer", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown call: status %d, want 404", w.Code)
	}
}

func TestOpenCallAcceptsObjectMetadata(t *testing.T) {
	r, _ := newTestRouter()
	openCall(t, r, gin.H{"phone_number": "+15551234567", "row_id": "8"})
}

func TestCallToolErrors(t *testing.T) {
	r, _ := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing metadata", http.MethodPost, "/api/calls", gin.H{"room": "r"}, http.StatusBadRequest},
		{"invalid phone", http.MethodPost, "/api/calls", gin.H{"metadata": gin.H{"phone_number": "abc"}}, http.StatusBadRequest},
		{"unknown call", http.MethodPost, "/api/calls/nope/check-availability", gin.H{"dateTime": "2pm"}, http.StatusNotFound},
		{"unknown call get", http.MethodGet, "/api/calls/nope", nil, http.StatusNotFound},
		{"bad speaker", http.MethodPost, "/api/calls/nope/transcript", gin.H{"speaker": "Robot", "text": "hi"}, http.StatusBadRequest},
		{"missing status", http.MethodPost, "/api/calls/nope/end", gin.H{}, http.StatusBadRequest},
		{"non-terminal status", http.MethodPost, "/api/calls/nope/end", gin.H{"status": "in_progress"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w := do(r, tt.method, tt.path, tt.body); w.Code != tt.want {
			t.Errorf("%s: status %d, want %d (body %s)", tt.name, w.Code, tt.want, w.Body)
		}
	}
}

func TestHealthHandler(t *testing.T) {
	r, _ := newTestRouter()
	w := do(r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: status %d", w.Code)
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "ok" || resp["active_calls"] != float64(0) {
		t.Errorf("health = %v", resp)
	}
}
