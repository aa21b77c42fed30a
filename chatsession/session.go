package chatsession

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// Session holds the currently selected model, the ordered conversation
// transcript, and a backend client bound to the selected model's server.
//
// A session is single-threaded: selection, transcript, and the backend
// binding are mutable state with no internal locking. Callers needing
// concurrent access must synchronize externally.
type Session struct {
	id         string
	registry   *Registry
	selected   *ModelDescriptor
	backend    *openai.Client
	transcript []Message
	httpClient *http.Client
	logger     *logrus.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient sets the HTTP client used for backend calls. Deadlines and
// transport tuning belong to this client; the session imposes none itself.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Session) { s.httpClient = hc }
}

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a session over an already-resolved registry. If the
// registry is non-empty, the model with identifier 1 is selected.
func NewSession(reg *Registry, opts ...Option) *Session {
	s := &Session{
		id:       uuid.New().String(),
		registry: reg,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if reg.Len() > 0 {
		// Cannot fail: identifier 1 exists whenever the registry is non-empty.
		_ = s.SelectModel(ByID(1))
	}
	return s
}

// NewSessionFromFile resolves the servers configuration file at path and
// returns a session over the discovered models. Configuration failures are
// fatal in the sense of IsFatalConfig; the hosting program decides whether
// to terminate on them.
func NewSessionFromFile(ctx context.Context, path string, opts ...Option) (*Session, error) {
	s := &Session{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	resolver := NewResolver(WithResolverHTTPClient(s.httpClient), WithResolverLogger(s.logger))
	reg := NewRegistry()
	if err := resolver.ResolveFile(ctx, path, reg); err != nil {
		return nil, err
	}
	return NewSession(reg, opts...), nil
}

// NewSessionFromEnv resolves a single server from the API_KEY and BASE_URL
// environment variables and returns a session over its models.
func NewSessionFromEnv(ctx context.Context, opts ...Option) (*Session, error) {
	s := &Session{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	resolver := NewResolver(WithResolverHTTPClient(s.httpClient), WithResolverLogger(s.logger))
	reg := NewRegistry()
	if err := resolver.ResolveEnv(ctx, reg); err != nil {
		return nil, err
	}
	return NewSession(reg, opts...), nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Registry returns the session's model registry.
func (s *Session) Registry() *Registry {
	return s.registry
}

// AvailableModels lists the discovered models in registry order.
func (s *Session) AvailableModels() []ModelSummary {
	models := s.registry.List()
	out := make([]ModelSummary, len(models))
	for i, d := range models {
		out[i] = ModelSummary{Name: d.Name, ID: d.ID, Server: d.Server}
	}
	return out
}

// SelectModel binds the first registry entry matched by ref as the current
// model and rebuilds the backend client from its server and credential.
// Fails with *ModelNotFoundError, leaving the previous selection and the
// transcript untouched.
func (s *Session) SelectModel(ref ModelRef) error {
	d, ok := s.registry.Lookup(ref)
	if !ok {
		return &ModelNotFoundError{Ref: ref}
	}
	s.selected = &d
	s.backend = newBackendClient(d.APIKey, d.BaseURL, s.httpClient)
	s.logger.WithFields(logrus.Fields{
		"session": s.id,
		"model":   d.Name,
		"id":      d.ID,
	}).Debug("model selected")
	return nil
}

// CurrentModel returns the selected model descriptor, if any.
func (s *Session) CurrentModel() (ModelDescriptor, bool) {
	if s.selected == nil {
		return ModelDescriptor{}, false
	}
	return *s.selected, true
}

// SendBlocking appends message as a user turn, sends the full transcript to
// the backend, appends the assistant reply, and returns the reply text.
//
// On backend failure the user turn stays in the transcript unanswered and
// an empty string is returned with a *BackendRequestFailedError.
func (s *Session) SendBlocking(ctx context.Context, message string) (string, error) {
	if s.selected == nil {
		return "", &NoModelSelectedError{}
	}
	s.transcript = append(s.transcript, Message{Role: RoleUser, Content: message})

	resp, err := s.backend.CreateChatCompletion(ctx, s.completionRequest(false))
	if err != nil {
		werr := backendError(s.selected.BaseURL, err)
		s.logger.WithError(werr).WithField("model", s.selected.Name).Error("chat completion failed")
		return "", werr
	}
	if len(resp.Choices) == 0 {
		werr := &BackendRequestFailedError{
			ClientError: ClientError{Message: "backend returned no choices"},
			Server:      s.selected.BaseURL,
		}
		s.logger.WithError(werr).WithField("model", s.selected.Name).Error("chat completion failed")
		return "", werr
	}

	reply := resp.Choices[0].Message.Content
	s.transcript = append(s.transcript, Message{Role: RoleAssistant, Content: reply})
	return reply, nil
}

// SendStreaming appends message as a user turn before any network activity
// and returns a pull-driven stream of reply fragments. If the backend call
// fails to start, no stream is returned and the user turn stays dangling.
//
// Unlike SendBlocking, the assistant reply is NOT appended to the transcript
// when the stream is drained; accumulating the fragments and recording them
// via Append is the caller's responsibility.
func (s *Session) SendStreaming(ctx context.Context, message string) (*ReplyStream, error) {
	if s.selected == nil {
		return nil, &NoModelSelectedError{}
	}
	s.transcript = append(s.transcript, Message{Role: RoleUser, Content: message})

	stream, err := s.backend.CreateChatCompletionStream(ctx, s.completionRequest(false))
	if err != nil {
		werr := backendError(s.selected.BaseURL, err)
		s.logger.WithError(werr).WithField("model", s.selected.Name).Error("chat completion stream failed to start")
		return nil, werr
	}
	return &ReplyStream{stream: stream, server: s.selected.BaseURL, logger: s.logger}, nil
}

// SendStructured appends message as a user turn, requests a reply constrained
// to a JSON object, and parses it into a map. Whenever the backend call
// succeeds, the raw reply text is appended as the assistant turn regardless
// of whether it parses; a parse failure returns an empty map with a
// *MalformedStructuredReplyError.
func (s *Session) SendStructured(ctx context.Context, message string) (map[string]any, error) {
	if s.selected == nil {
		return nil, &NoModelSelectedError{}
	}
	s.transcript = append(s.transcript, Message{Role: RoleUser, Content: message})

	resp, err := s.backend.CreateChatCompletion(ctx, s.completionRequest(true))
	if err != nil {
		werr := backendError(s.selected.BaseURL, err)
		s.logger.WithError(werr).WithField("model", s.selected.Name).Error("structured completion failed")
		return nil, werr
	}
	if len(resp.Choices) == 0 {
		werr := &BackendRequestFailedError{
			ClientError: ClientError{Message: "backend returned no choices"},
			Server:      s.selected.BaseURL,
		}
		s.logger.WithError(werr).WithField("model", s.selected.Name).Error("structured completion failed")
		return nil, werr
	}

	raw := resp.Choices[0].Message.Content
	s.transcript = append(s.transcript, Message{Role: RoleAssistant, Content: raw})

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		werr := &MalformedStructuredReplyError{
			ClientError: ClientError{Message: "structured reply is not a JSON object", Cause: err},
			Raw:         raw,
		}
		s.logger.WithField("model", s.selected.Name).Warn("structured reply did not parse as a JSON object")
		return map[string]any{}, werr
	}
	return out, nil
}

// ResetTranscript replaces the transcript with an empty one. The selected
// model and its backend binding are unaffected.
func (s *Session) ResetTranscript() {
	s.transcript = nil
}

// Transcript returns a copy of the conversation history in order.
func (s *Session) Transcript() []Message {
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Append records one message without contacting the backend. Role is not
// validated beyond the documented constants.
func (s *Session) Append(role Role, content string) {
	s.transcript = append(s.transcript, Message{Role: role, Content: content})
}

// SetSystemPrompt appends a system turn. It does not reset the transcript
// first; repeated calls stack system turns. Call ResetTranscript beforehand
// for a clean system turn.
func (s *Session) SetSystemPrompt(content string) {
	s.Append(RoleSystem, content)
}

// completionRequest builds the backend request from the full transcript,
// which at this point already includes the newly appended user turn.
func (s *Session) completionRequest(structured bool) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, len(s.transcript))
	for i, m := range s.transcript {
		msgs[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	req := openai.ChatCompletionRequest{
		Model:    s.selected.Name,
		Messages: msgs,
	}
	if structured {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return req
}
