package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/codemate/internal/app"
	"github.com/dshills/codemate/internal/engine"
)

var errNoInput = errors.New("no input: pass a file, pipe code on stdin or use --chat")

func newCompleteCmd(opts *options) *cobra.Command {
	var (
		language string
		chat     string
	)
	cmd := &cobra.Command{
		Use:   "complete [file|-]",
		Short: "Print a completion without opening the editor",
		Long: `complete sends code to the completion service and prints the cleaned
suggestion. The code is read from file, or from stdin when file is "-" or
missing. With --chat the request text is sent instead of code.`,
		Example: `  codemate complete main.go
  head -n 20 main.go | codemate complete --lang go
  codemate complete --lang python --chat "read a CSV file into a list of dicts"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.OnceRequest{Language: language}
			name := ""
			if chat != "" {
				req.Input = chat
				req.Chat = true
			} else {
				input, file, err := readInput(cmd.InOrStdin(), args)
				if err != nil {
					return err
				}
				req.Input, name = input, file
			}
			if req.Language == "" {
				req.Language = engine.DetectLanguageID(name)
			}

			cfg, logger, err := opts.loadLogger()
			if err != nil {
				return err
			}
			defer logger.Close()

			text, err := app.CompleteOnce(cmd.Context(), cfg, req, logger)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringVarP(&language, "lang", "l", "", "language hint (default: detected from the file name)")
	cmd.Flags().StringVar(&chat, "chat", "", "send a chat request instead of code")
	return cmd
}

// readInput returns the code to complete and the file it came from.
func readInput(stdin io.Reader, args []string) (string, string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(data), args[0], nil
	}

	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", "", errNoInput
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", "", err
	}
	if len(data) == 0 {
		return "", "", errNoInput
	}
	return string(data), "", nil
}
