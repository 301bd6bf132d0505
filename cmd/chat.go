package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/songwd/calassist/internal/agent"
)

func newChatCmd() *cobra.Command {
	var (
		debugMode bool
		plain     bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the scheduling assistant in the terminal",
		Long: `Start an interactive chat session with the scheduling assistant.

The assistant can list your scheduled events, book new 30-minute
meetings, and cancel existing bookings on your Cal.com calendar.

Type 'quit', 'exit', or 'bye' to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), debugMode, plain)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable markdown rendering of assistant replies")

	return cmd
}

func runChat(ctx context.Context, debugMode, plain bool) error {
	app, err := buildApplication(ctx, debugMode, false)
	if err != nil {
		return err
	}
	defer app.shutdown(ctx)

	render := newReplyRenderer(plain)

	fmt.Println("Cal.com AI Assistant is ready!")
	fmt.Println("Try asking things like:")
	fmt.Println("   - 'What meetings do I have today?'")
	fmt.Println("   - 'Book a meeting for tomorrow at 2 PM'")
	fmt.Println("   - 'Show me my schedule for this week'")
	fmt.Println("   - 'Cancel my 3pm meeting'")
	fmt.Println()
	fmt.Println("Type 'quit' to exit.")
	fmt.Println()

	history := agent.NewHistory(agent.CLIHistoryLimit)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "quit", "exit", "bye":
			fmt.Println("Goodbye! Have a great day!")
			return nil
		}

		reply := app.agent.Respond(ctx, history, input)
		history.AddExchange(input, reply)

		fmt.Printf("Assistant: %s\n", render(reply))
	}

	return scanner.Err()
}

// newReplyRenderer returns a function that renders assistant replies.
// Markdown rendering is used unless disabled or unavailable.
func newReplyRenderer(plain bool) func(string) string {
	if plain {
		return func(s string) string { return s }
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(s string) string { return s }
	}

	return func(s string) string {
		out, err := renderer.Render(s)
		if err != nil {
			return s
		}
		return strings.TrimRight(out, "\n")
	}
}
