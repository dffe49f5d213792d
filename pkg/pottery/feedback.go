package pottery

import "time"

// Feedback is a transient message for the potter. A newer message
// replaces an older one and restarts the timer.
type Feedback struct {
	Message   string        `json:"message"`
	Remaining time.Duration `json:"remaining"`
}

// Active reports whether the message is still showing.
func (f Feedback) Active() bool {
	return f.Message != "" && f.Remaining > 0
}

func (f *Feedback) show(msg string, d time.Duration) {
	f.Message = msg
	f.Remaining = d
}

func (f *Feedback) tick(dt time.Duration) {
	if f.Message == "" {
		return
	}
	f.Remaining -= dt
	if f.Remaining <= 0 {
		*f = Feedback{}
	}
}
