// Command-line chat client: captures a page and talks to the relay about it.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"pagechat/pagechat/config"
	"pagechat/pagechat/middlewares"
	"pagechat/pagechat/services/capture"
	"pagechat/pagechat/services/relayclient"
	"pagechat/pagechat/utils/htmlutils"
	"pagechat/pagechat/utils/identity"
	"pagechat/pagechat/utils/logging"
	"pagechat/pagechat/utils/pagecontext"
	"pagechat/pagechat/utils/types"

	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	defer logging.Sync()
	cfg := config.LoadConfig()

	args := os.Args[1:]
	switch {
	case len(args) >= 2 && args[0] == "chat":
		code := runChat(cfg, args[1])
		logging.Sync()
		os.Exit(code)
	case len(args) >= 2 && args[0] == "token":
		token, err := middlewares.IssueToken(cfg, args[1], 24*time.Hour)
		if err != nil {
			fmt.Fprintln(os.Stderr, "token:", err)
			os.Exit(1)
		}
		fmt.Println(token)
	default:
		fmt.Println("pagechat usage:")
		fmt.Println("  pagechat chat <url>        # chat about a web page through the relay")
		fmt.Println("  pagechat token <subject>   # print a relay access token (needs JWT_SECRET)")
		os.Exit(1)
	}
}

func runChat(cfg config.Config, url string) int {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := relayclient.Dial(ctx, cfg.RelayURL, cfg.RelayToken)
	cancel()
	if err != nil {
		logging.ErrorLogger.Error("relay connection error", zap.Error(err))
		fmt.Println("Error: Could not connect to server")
		return 1
	}
	defer client.Close()

	capturer := capture.NewLazyCapturer(
		capture.NewBrowserCapturer(cfg.CaptureTimeout),
		capture.NewHTTPCapturer(cfg.CaptureTimeout),
	)
	defer capturer.Close()

	profile, err := identity.Lookup(os.Getenv)
	if err != nil {
		logging.ErrorLogger.Error("Error fetching user info", zap.Error(err))
	}

	s := &chatSession{
		relay:      client,
		capturer:   capturer,
		url:        url,
		screenshot: cfg.CaptureScreenshot,
		maxChars:   cfg.MaxContextChars,
		out:        os.Stdout,
	}
	s.welcome(profile)
	s.loop(context.Background(), os.Stdin)
	return 0
}

type exchanger interface {
	Exchange(ctx context.Context, text string, pc types.PageContext) (types.Envelope, error)
}

// chatSession is the terminal equivalent of the extension's side panel.
type chatSession struct {
	relay      exchanger
	capturer   capture.Capturer
	url        string
	screenshot bool
	maxChars   int
	out        io.Writer
}

func (s *chatSession) welcome(p *identity.Profile) {
	fmt.Fprintf(s.out, "\n%s\n", identity.Greeting(p))
	fmt.Fprintln(s.out, "I'm your AI assistant.")
	fmt.Fprintln(s.out, "I can help you understand web pages better by analyzing their content and context. Just ask me anything!")
	if details := identity.Details(p); len(details) > 0 {
		fmt.Fprintln(s.out, "\nYour Profile Information:")
		for _, line := range details {
			fmt.Fprintf(s.out, "  - %s\n", line)
		}
	}
	fmt.Fprintf(s.out, "\nPage: %s\n", s.url)
	fmt.Fprintln(s.out, "Type a question, ':open <url>' to switch pages, or 'exit' to quit.")
	fmt.Fprintln(s.out)
}

func (s *chatSession) loop(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "you> ")
		if !scanner.Scan() {
			break // EOF or error
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			fmt.Fprintln(s.out, "👋 Goodbye!")
			return
		case strings.HasPrefix(line, ":open "):
			s.url = strings.TrimSpace(strings.TrimPrefix(line, ":open "))
			fmt.Fprintf(s.out, "Page: %s\n", s.url)
			continue
		}
		s.send(ctx, line)
	}
}

// send captures the page, relays one message and prints the reply.
func (s *chatSession) send(ctx context.Context, text string) {
	page, err := s.capturer.Capture(ctx, s.url, s.screenshot)
	if err != nil {
		logging.ErrorLogger.Error("page capture failed", zap.String("url", s.url), zap.Error(err))
		s.render(types.ErrorEnvelope())
		return
	}
	pc := pagecontext.Process(page.Text, page.Screenshot, s.maxChars)

	env, err := s.relay.Exchange(ctx, text, pc)
	if err != nil {
		logging.ErrorLogger.Error("relay exchange failed", zap.Error(err))
		fmt.Fprintln(s.out, "assistant> Error processing server response")
		return
	}
	s.render(env)
}

func (s *chatSession) render(env types.Envelope) {
	switch env.Type {
	case types.EnvelopeMessage:
		text := htmlutils.ToText(htmlutils.StripFencedParagraphs(env.Content))
		fmt.Fprintf(s.out, "assistant> %s\n\n", text)
	case types.EnvelopeError:
		fmt.Fprintf(s.out, "assistant> Error: %s\n\n", env.Content)
	}
}
