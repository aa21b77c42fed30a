package chatsession

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeBackend is an OpenAI-compatible test double serving the model-listing
// and chat-completion endpoints.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server
	mu  sync.Mutex

	models     []fakeModel
	reply      string
	fragments  []string
	failModels bool
	failChat   bool

	chatRequests []capturedChatRequest
}

type fakeModel struct {
	ID      string
	OwnedBy string
}

// capturedChatRequest records what the backend actually received.
type capturedChatRequest struct {
	Model          string    `json:"model"`
	Messages       []Message `json:"messages"`
	Stream         bool      `json:"stream"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func newFakeBackend(t *testing.T, models ...fakeModel) *fakeBackend {
	fb := &fakeBackend{t: t, models: models, reply: "ok"}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", fb.handleModels)
	mux.HandleFunc("/v1/chat/completions", fb.handleChat)
	fb.srv = httptest.NewServer(mux)
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) baseURL() string {
	return fb.srv.URL + "/v1"
}

func (fb *fakeBackend) lastChatRequest() capturedChatRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.chatRequests) == 0 {
		fb.t.Fatal("no chat requests were received")
	}
	return fb.chatRequests[len(fb.chatRequests)-1]
}

func (fb *fakeBackend) handleModels(w http.ResponseWriter, r *http.Request) {
	if fb.failModels {
		http.Error(w, `{"error":{"message":"discovery unavailable"}}`, http.StatusInternalServerError)
		return
	}
	type modelObject struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		OwnedBy string `json:"owned_by"`
	}
	data := make([]modelObject, len(fb.models))
	for i, m := range fb.models {
		data[i] = modelObject{ID: m.ID, Object: "model", OwnedBy: m.OwnedBy}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
}

func (fb *fakeBackend) handleChat(w http.ResponseWriter, r *http.Request) {
	var req capturedChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fb.mu.Lock()
	fb.chatRequests = append(fb.chatRequests, req)
	fb.mu.Unlock()

	if fb.failChat {
		http.Error(w, `{"error":{"message":"completion unavailable"}}`, http.StatusInternalServerError)
		return
	}

	if req.Stream {
		fb.writeStream(w, req.Model)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":%q,`+
		`"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`,
		req.Model, fb.reply)
}

func (fb *fakeBackend) writeStream(w http.ResponseWriter, model string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		fb.t.Fatal("response writer does not support flushing")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	for _, fragment := range fb.fragments {
		chunk, _ := json.Marshal(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion.chunk",
			"created": 1,
			"model":   model,
			"choices": []map[string]any{
				{"index": 0, "delta": map[string]any{"content": fragment}},
			},
		})
		fmt.Fprintf(w, "data: %s\n\n", chunk)
		flusher.Flush()
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}
