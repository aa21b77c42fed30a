package chatsession

import (
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// ReplyStream is a finite, single-pass stream of assistant reply fragments.
// The consumer drives pacing: each fragment is produced only when Recv is
// called. A stream that is dropped before being drained must be Closed to
// release the underlying connection.
type ReplyStream struct {
	stream *openai.ChatCompletionStream
	server string
	logger *logrus.Logger
	done   bool
}

// Recv returns the next text fragment in arrival order. It returns io.EOF
// when the stream is exhausted. After a mid-flight failure the error is
// reported once and the stream yields nothing further.
func (rs *ReplyStream) Recv() (string, error) {
	if rs.done {
		return "", io.EOF
	}
	for {
		resp, err := rs.stream.Recv()
		if errors.Is(err, io.EOF) {
			rs.finish()
			return "", io.EOF
		}
		if err != nil {
			rs.finish()
			werr := backendError(rs.server, err)
			rs.logger.WithError(werr).Error("chat completion stream failed")
			return "", werr
		}
		if len(resp.Choices) == 0 {
			continue
		}
		fragment := resp.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}
		return fragment, nil
	}
}

// Collect drains the stream and returns the concatenated reply text. On a
// mid-flight failure it returns the fragments received so far together with
// the error. Collect does not touch the session transcript; recording the
// reply stays the caller's decision.
func (rs *ReplyStream) Collect() (string, error) {
	var sb strings.Builder
	for {
		fragment, err := rs.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(fragment)
	}
}

// Close releases the underlying connection. It is safe to call Close more
// than once, and after the stream is exhausted.
func (rs *ReplyStream) Close() error {
	if rs.done {
		return nil
	}
	rs.finish()
	return nil
}

func (rs *ReplyStream) finish() {
	rs.done = true
	rs.stream.Close()
}
