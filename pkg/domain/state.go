package domain

import "time"

// Clipboard holds the values captured by the copy tool.
// Nil Cells means nothing was copied yet; nil entries are filtered-out placeholders
// that keep the copied block rectangular.
type Clipboard struct {
	Cells [][]any `json:"cells"`
}

// Empty reports whether nothing has been copied.
func (c *Clipboard) Empty() bool {
	return c == nil || c.Cells == nil
}

// At returns the clipboard value at offset (i, j) and whether it should be pasted.
// Offsets outside the copied block and placeholders are not pasted.
func (c *Clipboard) At(i, j int) (any, bool) {
	if c.Empty() || i >= len(c.Cells) || j >= len(c.Cells[i]) {
		return nil, false
	}
	v := c.Cells[i][j]
	return v, v != nil
}

// Session is the state kept for one conversation between batches.
type Session struct {
	ID        string    `json:"id"`
	Clipboard Clipboard `json:"clipboard"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed holds the encrypted clipboard when the store is wrapped by the
	// encryption middleware. Clipboard is empty while Sealed is set.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{ID: id, CreatedAt: now, UpdatedAt: now}
}

// Outcome is the result of executing one batch.
type Outcome struct {
	// Message is the space-joined TellUser messages.
	Message string `json:"message"`
	// ReadMessages has one entry per Read action, in order.
	ReadMessages []string `json:"read_messages,omitempty"`
	// HadRead is true when the batch contained a Read action, matched or not.
	HadRead bool `json:"had_read"`
	// Terminated is true when a Terminate action stopped the batch.
	Terminated bool `json:"terminated"`
	Applied    int  `json:"applied"`
	Skipped    int  `json:"skipped"`
}

// Scenario is a named, canned batch used by simulation mode.
type Scenario struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Batch       Batch  `json:"-"`
}
