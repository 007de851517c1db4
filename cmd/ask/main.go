// Command ask sends one prompt to several models and prints their answers
// side by side as they arrive.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/nulzo/neurix/internal/cli"
	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/gateway"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/internal/platform/logger"
	"github.com/nulzo/neurix/pkg/api"
	"go.uber.org/zap"

	_ "github.com/nulzo/neurix/internal/llm/anthropic"
	_ "github.com/nulzo/neurix/internal/llm/google"
	_ "github.com/nulzo/neurix/internal/llm/ollama"
	_ "github.com/nulzo/neurix/internal/llm/openai"
	_ "github.com/nulzo/neurix/internal/llm/relay"
)

const (
	pingModel  = "GPT-OSS-20B"
	pingPrompt = "Say hello in one short sentence to test the connection."
)

func main() {
	models := flag.String("models", "", "Comma separated model names (default: every enabled model)")
	pageContext := flag.String("context", "", "Context prepended to the message")
	temperature := flag.Float64("temperature", api.DefaultTemperature, "Sampling temperature")
	maxTokens := flag.Int("max-tokens", api.DefaultMaxTokens, "Maximum tokens per answer")
	relayURL := flag.String("relay", "", "Route every model through the relay at this URL")
	ping := flag.Bool("ping", false, "Send a short test prompt through -relay and exit")
	status := flag.Bool("status", false, "Probe model availability and exit")
	asJSON := flag.Bool("json", false, "Print the aggregated response as JSON")
	ordered := flag.Bool("ordered", false, "Wait for every model and print cards in selection order")
	level := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	zapLogger, err := logger.New(config.LogConfig{Level: *level, Format: "pretty", Color: true})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var registry *gateway.Registry
	if *relayURL != "" {
		registry, err = relayRegistry(*relayURL)
		if err != nil {
			zapLogger.Fatal("Failed to build relay registry", zap.Error(err))
		}
	} else {
		cfg, err := config.LoadConfig()
		if err != nil {
			zapLogger.Fatal("Failed to load config", zap.Error(err))
		}
		registry = gateway.BootstrapRegistry(cfg, zapLogger)
	}

	dispatcher := gateway.NewDispatcher(registry, zapLogger, gateway.Options{ProbeRPS: 2})
	selected := splitModels(*models)

	switch {
	case *ping:
		if *relayURL == "" {
			fmt.Fprintln(os.Stderr, "-ping requires -relay")
			os.Exit(2)
		}
		os.Exit(runPing(ctx, dispatcher))
	case *status:
		for _, s := range dispatcher.Probe(ctx, selected) {
			fmt.Println(cli.StatusLine(s))
		}
		return
	}

	message := strings.Join(flag.Args(), " ")
	if message == "" {
		message = readStdin()
	}

	req := &api.ChatRequest{
		Message:     message,
		Context:     *pageContext,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	if *asJSON || *ordered {
		agg, err := dispatcher.DispatchAll(ctx, req, selected)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", cli.CrossMark(), err)
			os.Exit(2)
		}
		if *asJSON {
			cli.PrettyPrint(agg)
		} else {
			fmt.Println(cli.Cards(registry.Descriptors(), agg))
		}
		return
	}

	_, results, err := dispatcher.DispatchEach(ctx, req, selected)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cli.CrossMark(), err)
		os.Exit(2)
	}
	for r := range results {
		desc := api.ModelDescriptor{Name: r.Model}
		if t, ok := registry.Lookup(r.Model); ok {
			desc = t.Descriptor
		}
		fmt.Println(cli.Card(desc, r))
	}
}

// relayRegistry exposes every model the relay accepts, routed through it.
func relayRegistry(url string) (*gateway.Registry, error) {
	p, err := llm.New(config.ProviderConfig{ID: "relay", Type: string(llm.Relay), Name: "Relay", BaseURL: url, Enabled: true})
	if err != nil {
		return nil, err
	}

	registry := gateway.NewRegistry()
	for _, m := range config.DefaultRelayModels() {
		desc := api.ModelDescriptor{
			Name:          m.Name,
			Provider:      p.Type(),
			Endpoint:      url,
			UpstreamModel: m.Name,
			Enabled:       true,
		}
		if err := registry.Add(desc, p); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func runPing(ctx context.Context, d *gateway.Dispatcher) int {
	fmt.Printf("%s Testing relay connection...\n", cli.Arrow())

	r, ok := d.DispatchOne(ctx, "", pingModel, &api.ChatRequest{
		Message:     pingPrompt,
		Temperature: api.Float(api.DefaultTemperature),
		MaxTokens:   api.Int(50),
	})
	if !ok {
		fmt.Printf("%s %s is not served by the relay\n", cli.CrossMark(), pingModel)
		return 1
	}
	if !r.Succeeded {
		fmt.Printf("%s FAILED: %s\n", cli.CrossMark(), r.Error)
		return 1
	}

	fmt.Printf("%s Relay is connected and working\n", cli.CheckMark())
	fmt.Println(cli.Card(api.ModelDescriptor{Name: r.Model}, r))
	return 0
}

func splitModels(raw string) []string {
	var out []string
	for _, m := range strings.Split(raw, ",") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func readStdin() string {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return ""
	}
	b, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
