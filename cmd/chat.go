package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/iksnae/chatlegis/internal"
	"github.com/spf13/cobra"
)

const chatHelp = `Commands:
  /new                 start a new chat
  /list                list stored conversations
  /load <number|id>    load a stored conversation
  /attach <path>       attach a document to the next message
  /record <path>       attach an audio recording to the next message
  /detach              drop the pending attachment
  /category [name]     show or select the document category
  /history             show the transcript
  /help                show this help
  /quit                leave the chat
Anything else is sent as a message.`

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Chat with ChatLegis in the terminal. The session's transcript is shown
first, and every message continues the current conversation. Type /help
for the available commands. Ctrl-C cancels a request in flight; Ctrl-D
or /quit leaves.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		r := &repl{
			app:    a,
			in:     bufio.NewScanner(cmd.InOrStdin()),
			out:    cmd.OutOrStdout(),
			errOut: cmd.ErrOrStderr(),
		}
		return r.run(cmd.Context())
	},
}

type repl struct {
	app    *app
	in     *bufio.Scanner
	out    io.Writer
	errOut io.Writer
}

func (r *repl) run(ctx context.Context) error {
	s := r.app.session
	displaySessionHeader(r.out, s)
	for i, msg := range s.Messages {
		displayMessage(r.out, i+1, msg, len(s.Messages), internal.IsTerminal(r.out))
	}

	if internal.NewAuth(s.AuthToken).Authenticated() {
		if _, err := r.app.engine.RefreshConversations(ctx, s); err != nil {
			internal.LogWarn("Could not fetch history", "error", err)
		}
	} else {
		internal.PrintWarning(r.errOut, internal.ErrUnauthenticated.Error())
	}
	fmt.Fprintln(r.out, "Type /help for commands.")

	for {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" && s.Pending == nil {
			continue
		}

		quit, err := r.handle(ctx, line)
		if err != nil {
			internal.PrintError(r.errOut, err.Error())
		}
		if saveErr := r.app.save(ctx); saveErr != nil {
			internal.LogError("Failed to save session", "error", saveErr)
		}
		if quit {
			return nil
		}
	}
}

// handle runs one input line and reports whether the loop should end
func (r *repl) handle(ctx context.Context, line string) (bool, error) {
	s := r.app.session
	if !strings.HasPrefix(line, "/") {
		turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		_, err := runTurn(turnCtx, r.out, r.errOut, r.app, line)
		return false, err
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprintln(r.out, chatHelp)
	case "new":
		r.app.engine.NewChat(s)
		internal.PrintSuccess(r.out, "Started a new chat")
	case "list":
		list, err := r.app.engine.RefreshConversations(ctx, s)
		if err != nil {
			internal.PrintWarning(r.errOut, fmt.Sprintf("Could not fetch history: %v", err))
		}
		displayConversations(r.out, list, s.ConversationID)
	case "load":
		if arg == "" {
			return false, errors.New("usage: /load <number|id>")
		}
		id := arg
		if c, ok := s.FindConversation(arg); ok {
			id = c.ID
		}
		load, err := r.app.engine.LoadHistory(ctx, s, id)
		if err != nil {
			return false, err
		}
		for i, msg := range load.Messages {
			displayMessage(r.out, i+1, msg, len(load.Messages), internal.IsTerminal(r.out))
		}
		if n := len(load.Degraded); n > 0 {
			internal.PrintWarning(r.errOut, fmt.Sprintf("%d record(s) could not be read", n))
		}
	case "attach", "record":
		if arg == "" {
			return false, fmt.Errorf("usage: /%s <path>", name)
		}
		filePath, audioPath := arg, ""
		if name == "record" {
			filePath, audioPath = "", arg
		}
		before := s.Pending
		if err := attachFromFlags(r.errOut, s, filePath, audioPath); err != nil {
			return false, err
		}
		if p := s.Pending; p != nil && p != before {
			internal.PrintSuccess(r.out, fmt.Sprintf("Attached %s; it will be sent with your next message", p.Name))
		}
	case "detach":
		if dropped := s.Detach(); dropped != nil {
			internal.PrintSuccess(r.out, fmt.Sprintf("Dropped %s", dropped.Name))
		}
	case "category":
		if arg == "" {
			printCategories(r.out, s.Category)
			return false, nil
		}
		category, err := internal.ParseCategory(arg)
		if err != nil {
			return false, err
		}
		s.Category = category
		internal.PrintSuccess(r.out, fmt.Sprintf("Category set to %s", category))
	case "history":
		displaySessionHeader(r.out, s)
		for i, msg := range s.Messages {
			displayMessage(r.out, i+1, msg, len(s.Messages), internal.IsTerminal(r.out))
		}
	default:
		return false, fmt.Errorf("unknown command /%s (type /help)", name)
	}
	return false, nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
