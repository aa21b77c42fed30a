package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modelfleet/modelfleet/chatsession"
)

var promptStyle = nameStyle

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with the selected model. Replies are
streamed; the accumulated reply is recorded in the transcript so the
conversation keeps its context.

Commands inside the session:
  /models         list discovered models
  /use <id|name>  switch to another model
  /system <text>  set a system prompt (resets the transcript first)
  /reset          clear the transcript
  /quit           leave the session`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := buildSession(cmd.Context())
		if err != nil {
			return err
		}

		if current, ok := sess.CurrentModel(); ok {
			fmt.Printf("Chatting with %s (ID %d). Type /quit to leave.\n", current.Name, current.ID)
		} else {
			fmt.Println("No models discovered; use /models after fixing the configuration.")
		}

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print(promptStyle.Render("you> "))
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "/") {
				if done := runSlashCommand(sess, line); done {
					return nil
				}
				continue
			}

			stream, err := sess.SendStreaming(cmd.Context(), line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			reply, recvErr := printStream(stream)
			// Streaming leaves the assistant turn to the caller; record
			// whatever arrived so the next exchange keeps its context.
			if reply != "" {
				sess.Append(chatsession.RoleAssistant, reply)
			}
			if recvErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", recvErr)
			}
		}
	},
}

// printStream drains the stream, echoing fragments as they arrive, and
// returns the accumulated reply text.
func printStream(stream *chatsession.ReplyStream) (string, error) {
	defer stream.Close()
	var sb strings.Builder
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return sb.String(), nil
		}
		if err != nil {
			fmt.Println()
			return sb.String(), err
		}
		fmt.Print(fragment)
		sb.WriteString(fragment)
	}
}

// runSlashCommand handles an in-session command, returning true when the
// session should end.
func runSlashCommand(sess *chatsession.Session, line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/quit", "/exit":
		return true

	case "/models":
		current, _ := sess.CurrentModel()
		for _, m := range sess.AvailableModels() {
			marker := " "
			if m.ID == current.ID {
				marker = "*"
			}
			fmt.Printf("%s %2d  %s (%s)\n", marker, m.ID, m.Name, m.Server)
		}

	case "/use":
		if rest == "" {
			fmt.Println("Usage: /use <id|name>")
			break
		}
		if err := sess.SelectModel(chatsession.ParseModelRef(rest)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		current, _ := sess.CurrentModel()
		fmt.Printf("Now chatting with %s (ID %d).\n", current.Name, current.ID)

	case "/system":
		if rest == "" {
			fmt.Println("Usage: /system <text>")
			break
		}
		sess.ResetTranscript()
		sess.SetSystemPrompt(rest)
		fmt.Println("System prompt set; transcript cleared.")

	case "/reset":
		sess.ResetTranscript()
		fmt.Println("Transcript cleared.")

	default:
		fmt.Printf("Unknown command %s\n", cmd)
	}
	return false
}
