package editor

import "time"

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// Notifier shows a blocking notice to the user.
type Notifier interface {
	Notice(message string)
}

// NoticeFunc adapts a function to Notifier.
type NoticeFunc func(message string)

func (f NoticeFunc) Notice(message string) { f(message) }

// RepeatConfirmer approves an action when it is requested twice with the
// same message within Window. The first request only arms it and reports
// the prompt through Prompt.
type RepeatConfirmer struct {
	Window time.Duration
	Prompt func(message string)
	Now    func() time.Time

	armed   string
	armedAt time.Time
}

func NewRepeatConfirmer(window time.Duration, prompt func(string)) *RepeatConfirmer {
	return &RepeatConfirmer{Window: window, Prompt: prompt, Now: time.Now}
}

func (c *RepeatConfirmer) Confirm(message string) bool {
	now := c.Now()
	if c.armed == message && now.Sub(c.armedAt) <= c.Window {
		c.armed = ""
		return true
	}
	c.armed = message
	c.armedAt = now
	if c.Prompt != nil {
		c.Prompt(message)
	}
	return false
}

// Reset disarms any pending confirmation.
func (c *RepeatConfirmer) Reset() {
	c.armed = ""
}
