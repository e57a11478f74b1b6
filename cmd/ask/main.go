// Command ask sends a prompt to a running server and prints the streamed answer.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pageza/vinoteca/backend/internal/logger"
	"github.com/pageza/vinoteca/backend/internal/ndjson"
	"github.com/pageza/vinoteca/backend/internal/types"
	"go.uber.org/zap"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Server base URL")
	username := flag.String("user", "", "Username sent with the prompt")
	wine := flag.Bool("wine", false, "Treat the argument as a wine name and ask for storage and serving advice")
	flag.Parse()

	prompt := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if prompt == "" {
		fmt.Fprintln(os.Stderr, "usage: ask [-url URL] [-user NAME] [-wine] <prompt>")
		os.Exit(2)
	}

	log, err := logger.New("warn", "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, body := "/api/v1/ai-search", any(types.RecommendationRequest{Prompt: prompt, Username: *username})
	if *wine {
		path, body = "/api/v1/ai-wine-info", types.WineInfoRequest{WineName: prompt}
	}

	if err := ask(ctx, strings.TrimRight(*baseURL, "/")+path, body, os.Stdout, log); err != nil {
		fmt.Fprintf(os.Stderr, "ask: %v\n", err)
		os.Exit(1)
	}
}

func ask(ctx context.Context, url string, body any, out io.Writer, log *zap.Logger) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", ndjson.ContentType)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	reader := ndjson.NewReader(resp.Body, log)
	batches := 0
	for {
		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		switch ev.Kind {
		case types.EventText, types.EventPartial:
			fmt.Fprint(out, ev.Text)
		case types.EventWines:
			batches++
			label := "Matching wines"
			if batches > 1 {
				label = "\n\nRecommended wines"
			}
			printWines(out, label, ev.Wines)
		case types.EventWineInfo:
			var pretty bytes.Buffer
			if json.Indent(&pretty, ev.WineInfo, "", "  ") == nil {
				fmt.Fprintf(out, "\n%s\n", pretty.String())
			}
		case types.EventError:
			fmt.Fprintf(out, "\n[error] %s\n", strings.TrimSpace(ev.Text))
		case types.EventCompleteResponse:
			// already printed as text
		}
	}
}

func printWines(out io.Writer, label string, wines []types.EnrichedWine) {
	fmt.Fprintf(out, "%s (%d):\n", label, len(wines))
	for _, w := range wines {
		rating := "unrated"
		if w.Rating != nil {
			rating = fmt.Sprintf("%.1f", *w.Rating)
		}
		fmt.Fprintf(out, "  - %s [%s] %s %s\n", w.Name, rating, w.Grape, w.Region)
	}
	fmt.Fprintln(out)
}
