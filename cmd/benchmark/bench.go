package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"time"

	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/ratelimit"
	"github.com/nulzo/neurix/internal/relay"
	"github.com/nulzo/neurix/internal/server"
	vegeta "github.com/tsenart/vegeta/v12/lib"
	"go.uber.org/zap"
)

var upstreamResp = []byte(`{"id":"bench-123","choices":[{"message":{"content":"pong"}}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "Duration of the test")
	rate := flag.Int("rate", 200, "Requests per second")
	clients := flag.Int("clients", 20, "Distinct client ids sent in CF-Connecting-IP")
	limit := flag.Int("limit", 30, "Accepted requests per client per window")
	upstreamDelay := flag.Duration("upstream-delay", 10*time.Millisecond, "Simulated upstream latency")
	flag.Parse()

	var upstreamCalls int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&upstreamCalls, 1)
		time.Sleep(*upstreamDelay)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(upstreamResp)
	}))
	defer upstream.Close()

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "production"},
		Relay: config.RelayConfig{
			ServiceName:  "neurix-bench",
			UpstreamURL:  upstream.URL,
			APIKey:       "bench-key",
			ClientHeader: "CF-Connecting-IP",
			Models:       config.DefaultRelayModels(),
			RateLimit:    config.RateLimitConfig{Limit: *limit, Window: time.Minute, MaxClients: 1000},
		},
	}

	store := ratelimit.NewMemoryStore(ratelimit.PolicyFromConfig(cfg.Relay.RateLimit))
	srv := server.New(cfg, zap.NewNop(), server.Deps{
		Relay:        relay.NewService(cfg.Relay, relay.NewClient(cfg.Relay, nil), zap.NewNop(), nil),
		RelayLimiter: ratelimit.NewLimiter(store),
	})
	app := httptest.NewServer(srv.Handler())
	defer app.Close()

	body := []byte(`{"modelName":"DeepSeek","messages":[{"role":"user","content":"ping"}],"maxTokens":50}`)
	targeter := func(t *vegeta.Target) error {
		t.Method = http.MethodPost
		t.URL = app.URL + "/api/chat"
		t.Body = body
		t.Header = http.Header{
			"Content-Type":     []string{"application/json"},
			"CF-Connecting-IP": []string{fmt.Sprintf("10.0.0.%d", rand.Intn(*clients)+1)},
		}
		return nil
	}

	fmt.Printf("Running relay benchmark: %s duration, %d req/s, %d clients, limit %d/min\n",
		*duration, *rate, *clients, *limit)

	attacker := vegeta.NewAttacker(vegeta.KeepAlive(true))
	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, *duration, "Relay") {
		metrics.Add(res)
	}
	metrics.Close()

	tracked, err := store.Clients(context.Background())
	if err != nil {
		log.Fatalf("Failed to read limiter state: %v", err)
	}

	fmt.Println("--------------------------------------------------")
	fmt.Println("99th percentile: ", metrics.Latencies.P99)
	fmt.Println("Mean:            ", metrics.Latencies.Mean)
	fmt.Println("Max:             ", metrics.Latencies.Max)
	fmt.Printf("Throughput:      %.2f req/s\n", metrics.Throughput)
	fmt.Printf("Upstream calls:  %d\n", atomic.LoadInt64(&upstreamCalls))
	fmt.Printf("Tracked clients: %d\n", tracked)
	fmt.Println("Status codes:")

	codes := make([]string, 0, len(metrics.StatusCodes))
	for code := range metrics.StatusCodes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Printf("  %s: %d\n", code, metrics.StatusCodes[code])
	}
	fmt.Println("--------------------------------------------------")

	if len(metrics.Errors) > 0 {
		fmt.Println("Error Set (first 5 unique):")
		seen := make(map[string]bool)
		for _, msg := range metrics.Errors {
			if !seen[msg] && len(seen) < 5 {
				fmt.Println(msg)
				seen[msg] = true
			}
		}
	}
}
