package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"vantage-hq/saturn/pkg/cardinality"
	"vantage-hq/saturn/pkg/config"
)

// OverflowValue replaces a label value the guard rejected with Drop, so the
// sample is still counted without growing the series set.
const OverflowValue = "_overflow"

// Collector orchestrates the Prometheus metrics for the service. All business
// metrics pass through the cardinality guard before recording.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry
	guard    *cardinality.Guard

	request   *RequestMetrics
	screening *ScreeningMetrics
	publish   *PublishMetrics
	guardSelf *GuardMetrics
}

// NewCollector creates a collector with the given guard and registry. If
// registry is nil a fresh one is created.
func NewCollector(cfg config.MetricsConfig, guard *cardinality.Guard, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "saturn"
	}

	return &Collector{
		config:    cfg,
		registry:  registry,
		guard:     guard,
		request:   NewRequestMetrics(cfg, registry),
		screening: NewScreeningMetrics(cfg, registry),
		publish:   NewPublishMetrics(cfg, registry),
		guardSelf: NewGuardMetrics(cfg, guard, registry),
	}
}

// RecordRequest records metrics for one completed HTTP request.
func (c *Collector) RecordRequest(endpoint, method, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	labels := map[string]string{"endpoint": endpoint, "method": method, "status": status}
	endpoint, method, status, ok := c.guarded3("saturn_requests_total", labels, "endpoint", "method", "status")
	if !ok {
		return
	}

	c.request.Record(endpoint, method, status, duration)
}

// RecordScreening records metrics for one screened transaction.
func (c *Collector) RecordScreening(gateway string, outcome string, score int, ruleHits []string) {
	if !c.config.Enabled {
		return
	}

	labels := map[string]string{"gateway": gateway, "outcome": outcome}
	gateway, outcome, ok := c.guarded2("saturn_screenings_total", labels, "gateway", "outcome")
	if !ok {
		return
	}

	c.screening.Record(gateway, outcome, score)

	for _, rule := range ruleHits {
		ruleLabels := map[string]string{"rule": rule}
		if rule, ok = c.guarded1("saturn_rule_hits_total", ruleLabels, "rule"); ok {
			c.screening.RecordRuleHit(rule)
		}
	}
}

// RecordPublish records metrics for one Kafka publish attempt.
func (c *Collector) RecordPublish(topic, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	labels := map[string]string{"topic": topic, "status": status}
	topic, status, ok := c.guarded2("saturn_kafka_publishes_total", labels, "topic", "status")
	if !ok {
		return
	}

	c.publish.Record(topic, status, duration)
}

// GuardSink returns a sink that mirrors guard events into the self-metrics.
// Wire it into the guard's sink fanout.
func (c *Collector) GuardSink() cardinality.Sink {
	return c.guardSelf
}

// Registry returns the Prometheus registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// guarded1 evaluates one labeled metric against the guard. On Drop the label
// value is replaced with the overflow value; on CircuitOpenReject ok is false
// and the sample must be skipped.
func (c *Collector) guarded1(metric string, labels map[string]string, name string) (string, bool) {
	switch c.evaluate(metric, labels) {
	case cardinality.Drop:
		return OverflowValue, true
	case cardinality.CircuitOpenReject:
		return "", false
	}
	return labels[name], true
}

func (c *Collector) guarded2(metric string, labels map[string]string, name1, name2 string) (string, string, bool) {
	switch c.evaluate(metric, labels) {
	case cardinality.Drop:
		return OverflowValue, OverflowValue, true
	case cardinality.CircuitOpenReject:
		return "", "", false
	}
	return labels[name1], labels[name2], true
}

func (c *Collector) guarded3(metric string, labels map[string]string, name1, name2, name3 string) (string, string, string, bool) {
	switch c.evaluate(metric, labels) {
	case cardinality.Drop:
		return OverflowValue, OverflowValue, OverflowValue, true
	case cardinality.CircuitOpenReject:
		return "", "", "", false
	}
	return labels[name1], labels[name2], labels[name3], true
}

func (c *Collector) evaluate(metric string, labels map[string]string) cardinality.Decision {
	if c.guard == nil {
		return cardinality.Allow
	}
	decision := c.guard.Evaluate(metric, labels)
	c.guardSelf.RecordDecision(decision)
	return decision
}
