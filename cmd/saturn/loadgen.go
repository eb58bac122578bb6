package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vantage-hq/saturn/pkg/fraud"
)

var loadgenFlags struct {
	target      string
	duration    time.Duration
	rate        int
	concurrency int
	cards       int
	gateways    int
	explode     bool
}

var loadgenCmd = &cobra.Command{
	Use:   "loadgen",
	Short: "Generate screening traffic",
	Long: `Generate synthetic screening traffic against a running Saturn instance.

By default transactions draw from a bounded pool of cards and gateways so the
label population stays within the guard's limits. With --explode every
transaction carries a fresh card ID, driving the cardinality guard into
violation and (under circuit_break) opening circuits. Watch the effect on
/v1/cardinality/stats and the saturn_guard_* metrics.

Examples:
  # Steady bounded traffic
  saturn loadgen --duration 30s --rate 50

  # Larger label population
  saturn loadgen --cards 500 --gateways 8

  # Force cardinality violations
  saturn loadgen --explode --duration 10s`,
	RunE: runLoadgen,
}

func init() {
	rootCmd.AddCommand(loadgenCmd)

	loadgenCmd.Flags().StringVar(&loadgenFlags.target, "target", "http://127.0.0.1:8080", "saturn base URL")
	loadgenCmd.Flags().DurationVar(&loadgenFlags.duration, "duration", 30*time.Second, "test duration")
	loadgenCmd.Flags().IntVar(&loadgenFlags.rate, "rate", 20, "requests per second")
	loadgenCmd.Flags().IntVar(&loadgenFlags.concurrency, "concurrency", 4, "concurrent clients")
	loadgenCmd.Flags().IntVar(&loadgenFlags.cards, "cards", 100, "distinct card pool size")
	loadgenCmd.Flags().IntVar(&loadgenFlags.gateways, "gateways", 4, "distinct gateway pool size")
	loadgenCmd.Flags().BoolVar(&loadgenFlags.explode, "explode", false, "use a fresh card ID per transaction")
}

var gatewayPool = []string{
	"stripe", "adyen", "braintree", "checkout", "worldpay",
	"cybersource", "authorize", "square", "mollie", "klarna",
}

var countryPool = []string{"US", "GB", "DE", "FR", "NL", "SE", "AU", "JP", "BR", "IN"}

func runLoadgen(cmd *cobra.Command, args []string) error {
	fmt.Println("Saturn Load Generator")
	fmt.Println("=====================")
	fmt.Printf("Target: %s\n", loadgenFlags.target)
	fmt.Printf("Duration: %s\n", loadgenFlags.duration)
	fmt.Printf("Rate: %d req/s x %d clients\n", loadgenFlags.rate, loadgenFlags.concurrency)
	if loadgenFlags.explode {
		fmt.Println("Mode: EXPLODE (fresh card ID per transaction)")
	} else {
		fmt.Printf("Mode: bounded (%d cards, %d gateways)\n", loadgenFlags.cards, loadgenFlags.gateways)
	}
	fmt.Println()
	fmt.Println("Running...")

	results := generateLoad()
	displayLoadResults(results)
	return nil
}

type loadResults struct {
	sent      int64
	succeeded int64
	failed    int64
	outcomes  map[string]int64
	latencies []time.Duration
	duration  time.Duration
}

func generateLoad() *loadResults {
	results := &loadResults{outcomes: make(map[string]int64)}

	var (
		mu        sync.Mutex
		succeeded atomic.Int64
		failed    atomic.Int64
		sent      atomic.Int64
	)

	client := &http.Client{Timeout: 10 * time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), loadgenFlags.duration)
	defer cancel()

	gateways := loadgenFlags.gateways
	if gateways > len(gatewayPool) {
		gateways = len(gatewayPool)
	}
	if gateways < 1 {
		gateways = 1
	}

	interval := time.Second / time.Duration(loadgenFlags.rate*loadgenFlags.concurrency)
	if interval <= 0 {
		interval = time.Millisecond
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < loadgenFlags.concurrency; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)))
			ticker := time.NewTicker(interval * time.Duration(loadgenFlags.concurrency))
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					sent.Add(1)

					txn := randomTransaction(rng, gateways)
					reqStart := time.Now()
					outcome, err := sendTransaction(ctx, client, txn)
					latency := time.Since(reqStart)

					if err != nil {
						failed.Add(1)
						continue
					}
					succeeded.Add(1)

					mu.Lock()
					results.latencies = append(results.latencies, latency)
					results.outcomes[outcome]++
					mu.Unlock()
				}
			}
		}(i)
	}
	wg.Wait()

	results.duration = time.Since(start)
	results.sent = sent.Load()
	results.succeeded = succeeded.Load()
	results.failed = failed.Load()
	return results
}

func randomTransaction(rng *rand.Rand, gateways int) fraud.Transaction {
	cardID := fmt.Sprintf("card-%04d", rng.Intn(loadgenFlags.cards))
	if loadgenFlags.explode {
		cardID = "card-" + uuid.New().String()
	}

	return fraud.Transaction{
		ID:          uuid.New().String(),
		CardID:      cardID,
		CardBIN:     fmt.Sprintf("4%05d", rng.Intn(100000)),
		Gateway:     gatewayPool[rng.Intn(gateways)],
		AmountCents: int64(rng.Intn(500000)) + 100,
		Currency:    "USD",
		Country:     countryPool[rng.Intn(len(countryPool))],
		MerchantID:  fmt.Sprintf("merchant-%03d", rng.Intn(50)),
	}
}

func sendTransaction(ctx context.Context, client *http.Client, txn fraud.Transaction) (string, error) {
	body, err := json.Marshal(txn)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		loadgenFlags.target+"/v1/screen", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var assessment fraud.Assessment
	if err := json.NewDecoder(resp.Body).Decode(&assessment); err != nil {
		return "", err
	}
	return string(assessment.Outcome), nil
}

func displayLoadResults(results *loadResults) {
	fmt.Println()
	fmt.Println("Results:")
	fmt.Println("--------")
	fmt.Printf("Requests:   %d sent, %d succeeded, %d failed\n",
		results.sent, results.succeeded, results.failed)
	fmt.Printf("Duration:   %.1fs\n", results.duration.Seconds())

	if results.succeeded > 0 {
		throughput := float64(results.succeeded) / results.duration.Seconds()
		fmt.Printf("Throughput: %.2f req/s\n", throughput)
	}

	if len(results.outcomes) > 0 {
		fmt.Println()
		fmt.Println("Outcomes:")
		for _, outcome := range []string{"approve", "review", "decline"} {
			if count := results.outcomes[outcome]; count > 0 {
				fmt.Printf("  %-8s %d\n", outcome, count)
			}
		}
	}

	if len(results.latencies) > 0 {
		sorted := make([]time.Duration, len(results.latencies))
		copy(sorted, results.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum time.Duration
		for _, lat := range sorted {
			sum += lat
		}

		pct := func(p float64) time.Duration {
			idx := int(float64(len(sorted)) * p)
			if idx >= len(sorted) {
				idx = len(sorted) - 1
			}
			return sorted[idx]
		}

		fmt.Println()
		fmt.Println("Latency:")
		fmt.Printf("  Min:     %.1fms\n", float64(sorted[0].Microseconds())/1000)
		fmt.Printf("  Mean:    %.1fms\n", float64((sum / time.Duration(len(sorted))).Microseconds())/1000)
		fmt.Printf("  Median:  %.1fms\n", float64(pct(0.5).Microseconds())/1000)
		fmt.Printf("  p95:     %.1fms\n", float64(pct(0.95).Microseconds())/1000)
		fmt.Printf("  p99:     %.1fms\n", float64(pct(0.99).Microseconds())/1000)
		fmt.Printf("  Max:     %.1fms\n", float64(sorted[len(sorted)-1].Microseconds())/1000)
	}
}
