package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askStream bool
	askJSON   bool
	askSystem string
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Send one prompt and print the reply",
	Long: `Send a single prompt to the selected model.

By default the reply is requested in one piece. With --stream, fragments
are printed as they arrive. With --json, the reply is constrained to a
JSON object and pretty-printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := buildSession(cmd.Context())
		if err != nil {
			return err
		}
		if askSystem != "" {
			sess.SetSystemPrompt(askSystem)
		}
		prompt := strings.Join(args, " ")

		switch {
		case askJSON:
			obj, err := sess.SendStructured(cmd.Context(), prompt)
			if err != nil {
				return err
			}
			pretty, err := json.MarshalIndent(obj, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(pretty))
			return nil

		case askStream:
			stream, err := sess.SendStreaming(cmd.Context(), prompt)
			if err != nil {
				return err
			}
			defer stream.Close()
			for {
				fragment, err := stream.Recv()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				fmt.Fprint(os.Stdout, fragment)
			}
			fmt.Println()
			return nil

		default:
			reply, err := sess.SendBlocking(cmd.Context(), prompt)
			if err != nil {
				return err
			}
			fmt.Println(reply)
			return nil
		}
	},
}

func init() {
	askCmd.Flags().BoolVar(&askStream, "stream", false, "Stream the reply incrementally")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Request a structured (JSON object) reply")
	askCmd.Flags().StringVar(&askSystem, "system", "", "System prompt to set before asking")
}
