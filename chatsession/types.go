package chatsession

import "fmt"

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ModelDescriptor identifies one selectable backend model together with the
// server and credential needed to reach it. Descriptors are created during
// discovery and never mutated; several descriptors may share the same
// BaseURL and APIKey when one server exposes many models.
type ModelDescriptor struct {
	Name    string `json:"name"`     // backend model identifier, e.g. "gpt-4o-mini"
	ID      int    `json:"id"`       // registry identifier, assigned in discovery order from 1
	Server  string `json:"server"`   // attribution reported by the backend (owned_by)
	BaseURL string `json:"base_url"` // base URL of the owning server
	APIKey  string `json:"-"`        // credential for the owning server
}

// ModelSummary is the projection of a descriptor returned by
// Session.AvailableModels.
type ModelSummary struct {
	Name   string `json:"name"`
	ID     int    `json:"id"`
	Server string `json:"server"`
}

// ModelRef names a model either by registry identifier or by backend model
// name. Use ByID or ByName to construct one; the zero value matches nothing.
type ModelRef struct {
	id   int
	name string
	byID bool
}

// ByID refers to a model by its registry identifier.
func ByID(id int) ModelRef { return ModelRef{id: id, byID: true} }

// ByName refers to a model by its backend model name.
func ByName(name string) ModelRef { return ModelRef{name: name, byID: false} }

// Matches reports whether the reference names the given descriptor.
func (r ModelRef) Matches(d ModelDescriptor) bool {
	if r.byID {
		return d.ID == r.id
	}
	return r.name != "" && d.Name == r.name
}

func (r ModelRef) String() string {
	if r.byID {
		return fmt.Sprintf("#%d", r.id)
	}
	return r.name
}

// ParseModelRef interprets a user-supplied string as a model reference:
// a string of digits is an identifier, anything else is a model name.
func ParseModelRef(s string) ModelRef {
	var id int
	if _, err := fmt.Sscanf(s, "%d", &id); err == nil && fmt.Sprintf("%d", id) == s {
		return ByID(id)
	}
	return ByName(s)
}
