// Package chatsession is a conversational client for OpenAI-compatible
// chat-completion backends. It discovers the models of one or more servers,
// keeps an append-only registry of discovered models, and runs a stateful
// conversation against the selected model in three exchange modes: blocking,
// streaming, and structured (JSON object) replies.
//
// # Configuration
//
// A session is configured either from a servers file or from the
// environment:
//
//	// servers.yaml
//	// servers:
//	//   local:
//	//     api_key: sk-xxx
//	//     api_url: http://localhost:8000/v1
//	sess, err := chatsession.NewSessionFromFile(ctx, "servers.yaml")
//
//	// API_KEY / BASE_URL
//	sess, err := chatsession.NewSessionFromEnv(ctx)
//
// Discovery queries each server's model-listing endpoint and assigns every
// model a registry identifier in discovery order, starting at 1. When any
// model was discovered, identifier 1 is selected automatically.
//
// # Exchanges
//
// All three exchange modes append the user turn to the transcript before
// contacting the backend and send the full accumulated transcript:
//
//	reply, err := sess.SendBlocking(ctx, "Hello")
//
//	stream, err := sess.SendStreaming(ctx, "Hello")
//	for {
//	    fragment, err := stream.Recv()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    ...
//	}
//
//	obj, err := sess.SendStructured(ctx, "Extract the fields as JSON")
//
// Blocking and structured exchanges append the assistant reply to the
// transcript on success. Streaming deliberately does not: the caller owns
// accumulation and records the reply with Append if conversation context
// should include it. A failed exchange of any mode leaves the already
// appended user turn in the transcript.
//
// # Model selection
//
// Models are addressed by an explicit reference, either registry identifier
// or backend model name:
//
//	err := sess.SelectModel(chatsession.ByID(2))
//	err := sess.SelectModel(chatsession.ByName("gpt-4o-mini"))
//
// Selecting a model rebinds the backend connection to that model's server
// and credential; the transcript is unaffected.
//
// # Errors
//
// Configuration failures (missing file, malformed file, no servers, missing
// environment variables) are distinguished fatal types; IsFatalConfig lets a
// hosting program decide to terminate. Per-exchange failures are recoverable
// and reported once, so a long-lived session survives a failed call.
//
// Sessions are not safe for concurrent use.
package chatsession
