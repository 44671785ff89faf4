package models

import "time"

// ChatRequest is the payload coming from the chat widget into POST /chat.
type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

// ChatResponse is what the chat handler returns to the widget.
type ChatResponse struct {
	Response string `json:"response"`
}

// UserDetails is the structured appointment request extracted from the
// free-text question at the HTTP boundary. Fields are kept raw as written
// by the user; Requested carries the parsed date+time when both were
// present and valid.
type UserDetails struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Date  string `json:"date,omitempty"`
	Time  string `json:"time,omitempty"`

	Requested *time.Time `json:"-"`
}

// HasContact reports whether enough detail is present to escalate the
// request to a human follow-up channel.
func (d UserDetails) HasContact() bool {
	return d.Name != "" && d.Email != ""
}
