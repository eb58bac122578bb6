package cardinality

import (
	"fmt"
	"testing"
)

// The guard sits on the hot path of every instrumented call; the repeat path
// must stay in the low hundreds of nanoseconds.

func BenchmarkGuard_EvaluateRepeat(b *testing.B) {
	guard, err := New(DefaultConfig())
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	labels := map[string]string{"gateway": "stripe", "outcome": "approve"}
	guard.Evaluate("screenings_total", labels)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		guard.Evaluate("screenings_total", labels)
	}
}

func BenchmarkGuard_EvaluateRepeatParallel(b *testing.B) {
	guard, err := New(DefaultConfig())
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	labels := map[string]string{"gateway": "stripe", "outcome": "approve"}
	guard.Evaluate("screenings_total", labels)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			guard.Evaluate("screenings_total", labels)
		}
	})
}

func BenchmarkGuard_EvaluateNewCombinations(b *testing.B) {
	guard, err := New(Config{MaxCombinationsPerMetric: 1 << 30, MaxValuesPerLabel: 1 << 30})
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	values := make([]string, b.N)
	for i := range values {
		values[i] = fmt.Sprintf("v%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		guard.Evaluate("requests_total", map[string]string{"seq": values[i]})
	}
}

func BenchmarkCanonicalize(b *testing.B) {
	labels := map[string]string{
		"gateway":  "stripe",
		"outcome":  "approve",
		"currency": "EUR",
		"country":  "DE",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Canonicalize(labels)
	}
}

func BenchmarkGuard_Stats(b *testing.B) {
	guard, err := New(DefaultConfig())
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 100; i++ {
		guard.Evaluate(fmt.Sprintf("metric_%d", i%10), map[string]string{
			"seq": fmt.Sprintf("v%d", i),
		})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		guard.Stats()
	}
}
