package call

import (
	"strings"
	"sync"
	"time"

	"leadline/models"
)

// Transcript collects the utterances of one call in arrival order.
type Transcript struct {
	mu      sync.Mutex
	entries []models.TranscriptEntry
}

func (t *Transcript) Add(e models.TranscriptEntry) {
	e.Text = strings.TrimSpace(e.Text)
	if e.Text == "" {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()
}

func (t *Transcript) Entries() []models.TranscriptEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.TranscriptEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Render joins the final entries as "Speaker: text" lines. Interim
// recognitions are left out.
func (t *Transcript) Render() string {
	var b strings.Builder
	for _, e := range t.Entries() {
		if !e.IsFinal {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(e.Speaker))
		b.WriteString(": ")
		b.WriteString(e.Text)
	}
	return b.String()
}
