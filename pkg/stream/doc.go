// Package stream publishes fraud alerts and cardinality guard events to
// Kafka.
//
// The Publisher wraps a sarama async producer. Guard events are published
// through the cardinality.Sink interface with a non-blocking enqueue so a
// slow or unavailable broker never stalls the metric-recording hot path.
package stream
