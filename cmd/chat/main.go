package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"ragchat/internal/client"
	"ragchat/internal/markdown"
)

var (
	serverURL  = flag.String("server", "http://localhost:8080", "Chat server base URL")
	timeout    = flag.Duration("timeout", 2*time.Minute, "Per-request timeout")
	noColor    = flag.Bool("no-color", false, "Disable colored output")
	transcript = flag.String("transcript", "", "Write the conversation as HTML to this file on exit")
)

func main() {
	flag.Parse()
	if *noColor {
		color.NoColor = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := client.NewNotifier(client.DefaultNotificationTTL)
	defer notifier.Close()
	session := client.NewSession(client.NewAPIClient(*serverURL, *timeout), notifier)
	defer writeTranscript(session)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nShutting down...")
		cancel()
		writeTranscript(session)
		os.Exit(0)
	}()
	composer := client.NewComposer()
	renderer := markdown.NewTerminalRenderer(!color.NoColor)

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Println(boldGreen("Ritual AI"))
	fmt.Printf("Server: %s\n", boldCyan(*serverURL))
	fmt.Println("Type your message and press Enter. End a line with \\ to continue it.")
	fmt.Println("Type '/retry' to resend your last message, 'exit' to quit.")
	fmt.Println()

	printed := 0
	printNew := func() {
		msgs := session.Messages()
		for _, m := range msgs[printed:] {
			if m.IsBot {
				fmt.Printf("%s %s\n", boldCyan("Assistant:"), faint(m.Timestamp.Format("15:04")))
				fmt.Println(renderer.Render(m.Text))
			} else {
				fmt.Printf("%s %s\n", boldGreen("You:"), faint(m.Timestamp.Format("15:04")))
				fmt.Println(m.Text)
			}
			fmt.Println()
		}
		printed = len(msgs)
	}
	printNew()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print(boldGreen("> "))
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		if composer.Len() == 0 && strings.ToLower(strings.TrimSpace(line)) == "exit" {
			break
		}

		if composer.Len() == 0 && strings.TrimSpace(line) == "/retry" {
			last, ok := client.LastUserText(session.Messages())
			if !ok {
				fmt.Println(faint("nothing to retry"))
				continue
			}
			composer.Set(last)
			line = ""
		}

		// Trailing backslash is the terminal's shift+enter.
		if strings.HasSuffix(line, `\`) {
			composer.Type(strings.TrimSuffix(line, `\`) + "\n")
			fmt.Println(faint(composer.Counter()))
			continue
		}
		composer.Type(line)
		if composer.Len() == client.MaxInputChars {
			fmt.Println(faint(composer.Counter() + " (input truncated)"))
		}

		text, ok := composer.Take(session.Busy())
		if !ok {
			continue
		}

		fmt.Println(faint("Assistant is typing..."))
		err := session.Submit(ctx, text)
		printNew()
		if err != nil {
			for _, n := range notifier.Active() {
				fmt.Fprintf(os.Stderr, "%s %s\n", red(n.Title+":"), n.Description)
				notifier.Dismiss(n.ID)
			}
			if !errors.Is(err, client.ErrBlankInput) {
				fmt.Fprintln(os.Stderr, faint(err.Error()))
			}
		}
	}
}

func writeTranscript(session *client.Session) {
	if *transcript == "" {
		return
	}
	if err := os.WriteFile(*transcript, []byte(client.TranscriptHTML(session.Messages())), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write transcript failed: %v\n", err)
	}
}
