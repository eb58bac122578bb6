package cardinality

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key is the canonical, order-independent representation of a label set.
// Two label sets with the same name/value pairs produce equal Keys regardless
// of insertion order, so a Key is the unit of cardinality accounting.
type Key string

// Separator bytes cannot appear in valid UTF-8 label names or values, so the
// encoding is unambiguous even when values contain '=' or ','. This is the
// same convention Prometheus uses for label signatures.
const (
	pairSep  = '\xff'
	valueSep = '\xfe'
)

// Canonicalize produces the canonical Key for a label set. It is a pure
// function: deterministic, no I/O, O(n log n) in the number of labels.
func Canonicalize(labels map[string]string) Key {
	if len(labels) == 0 {
		return ""
	}

	names := make([]string, 0, len(labels))
	size := 0
	for name, value := range labels {
		names = append(names, name)
		size += len(name) + len(value) + 2
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.Grow(size)
	for i, name := range names {
		if i > 0 {
			sb.WriteByte(pairSep)
		}
		sb.WriteString(name)
		sb.WriteByte(valueSep)
		sb.WriteString(labels[name])
	}
	return Key(sb.String())
}

// shardIndex selects the counter shard for a metric name. xxHash64 keeps the
// hot path allocation-free and spreads metric names evenly across shards.
func shardIndex(metric string) uint64 {
	return xxhash.Sum64String(metric) % shardCount
}
