package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/figaro/pkg/chat"
	"github.com/go-go-golems/figaro/pkg/conversation"
	"github.com/go-go-golems/figaro/pkg/engine"
	"github.com/go-go-golems/figaro/pkg/models"
	"github.com/go-go-golems/figaro/pkg/session"
)

func newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := buildStore()
			service := chat.NewService(store, engine.NewMistralEngine(engineSettings()))

			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(100),
			)
			if err != nil {
				return err
			}

			repl := &chatRepl{
				store:    store,
				service:  service,
				renderer: renderer,
			}
			return repl.run(cmd.Context())
		},
	}
}

type chatRepl struct {
	store    *session.Store
	service  *chat.Service
	renderer *glamour.TermRenderer
}

func (r *chatRepl) run(ctx context.Context) error {
	fmt.Println("figaro - type a message, /help for commands")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s] > ", r.store.Current().Name)
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := r.handleCommand(ctx, line); quit {
				return nil
			}
			continue
		}

		if err := r.service.Send(ctx, r.store.CurrentID(), line, false); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		r.showResult()
	}
}

func (r *chatRepl) handleCommand(ctx context.Context, line string) bool {
	parts := strings.SplitN(line, " ", 2)
	command := parts[0]
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch command {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Println(`/new [name]        start a new session
/sessions          list sessions
/select <number>   switch to a session
/model <id>        change the session model
/models            list available models
/search <query>    send a web-search-augmented message
/regenerate        regenerate the last reply
/prev, /next       navigate between regenerated replies
/quit              exit`)

	case "/new":
		r.store.CreateSession(arg, models.DefaultModel)
		r.saveBlind()

	case "/sessions":
		r.listSessions()

	case "/select":
		n, err := strconv.Atoi(arg)
		sessions := r.store.List()
		if err != nil || n < 1 || n > len(sessions) {
			fmt.Fprintln(os.Stderr, "usage: /select <number>")
			break
		}
		r.store.SelectSession(sessions[n-1].ID)
		r.saveBlind()

	case "/model":
		r.store.ChangeModel(r.store.CurrentID(), models.ModelID(arg))
		r.saveBlind()

	case "/models":
		for _, info := range models.List() {
			fmt.Printf("%-20s %s\n", info.ID, info.Name)
		}

	case "/search":
		if arg == "" {
			fmt.Fprintln(os.Stderr, "usage: /search <query>")
			break
		}
		if err := r.service.SendWithWebSearch(ctx, r.store.CurrentID(), arg, false); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			break
		}
		r.showResult()

	case "/regenerate":
		if err := r.service.Regenerate(ctx, r.store.CurrentID()); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			break
		}
		r.showResult()

	case "/prev":
		r.navigate(conversation.DirectionPrev)

	case "/next":
		r.navigate(conversation.DirectionNext)

	default:
		fmt.Fprintln(os.Stderr, "unknown command, /help for help")
	}

	return false
}

func (r *chatRepl) navigate(direction conversation.Direction) {
	if err := r.service.Navigate(r.store.CurrentID(), direction); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	r.showResult()
}

func (r *chatRepl) showResult() {
	if errMsg := r.service.Err(); errMsg != "" {
		fmt.Fprintln(os.Stderr, errMsg)
		return
	}

	messages := r.store.Current().Messages
	if idx := messages.ActiveAssistantIndex(); idx >= 0 {
		r.renderMessage(messages[idx])
	}
}

func (r *chatRepl) renderMessage(msg *conversation.Message) {
	out, err := r.renderer.Render(msg.Content)
	if err != nil {
		fmt.Println(msg.Content)
		return
	}
	fmt.Print(out)

	if len(msg.Alternatives) > 0 {
		total := len(msg.Alternatives)
		if msg.CurrentAlternativeIndex == total {
			total++
		}
		fmt.Printf("(response %d of %d, /prev and /next to navigate)\n",
			msg.CurrentAlternativeIndex+1, total)
	}
}

func (r *chatRepl) listSessions() {
	current := r.store.CurrentID()
	for i, sess := range r.store.List() {
		marker := " "
		if sess.ID == current {
			marker = "*"
		}
		fmt.Printf("%s %d: %s (%s, %d messages)\n", marker, i+1, sess.Name, sess.Model, len(sess.Messages))
	}
}

func (r *chatRepl) saveBlind() {
	if err := r.store.Save(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not save state:", err)
	}
}
