// Package metrics provides a lightweight structured-metrics recorder in the
// CloudWatch Embedded Metrics Format. Records are written as JSON lines to
// stdout; under log-based metric extraction they become real metrics, and
// locally they remain grep-able measurements of generation latency and
// outcomes.
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Standard metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
	UnitNone         = "None"
)

type metricDef struct {
	Name string `json:"Name"`
	Unit string `json:"Unit"`
}

type emfDirective struct {
	Timestamp         int64      `json:"Timestamp"`
	CloudWatchMetrics []cwMetric `json:"CloudWatchMetrics"`
}

type cwMetric struct {
	Namespace  string      `json:"Namespace"`
	Dimensions [][]string  `json:"Dimensions"`
	Metrics    []metricDef `json:"Metrics"`
}

// Recorder accumulates dimensions and metric values for a single flush.
// Not safe for concurrent use; create one per operation.
type Recorder struct {
	namespace  string
	dimensions map[string]string
	metrics    map[string]metricDef
	values     map[string]any
}

// New creates a Recorder with the given metric namespace.
func New(namespace string) *Recorder {
	return &Recorder{
		namespace:  namespace,
		dimensions: make(map[string]string),
		metrics:    make(map[string]metricDef),
		values:     make(map[string]any),
	}
}

// Dimension adds a dimension key-value pair.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records a named metric value with a unit.
// Use the Unit* constants.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricDef{Name: name, Unit: unit}
	r.values[name] = value
	return r
}

// Count records a count-of-one metric, the common "this happened" case.
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Flush writes the accumulated record as a single EMF JSON line to stdout.
func (r *Recorder) Flush() {
	dimNames := make([]string, 0, len(r.dimensions))
	record := make(map[string]any, len(r.dimensions)+len(r.values)+1)
	for k, v := range r.dimensions {
		dimNames = append(dimNames, k)
		record[k] = v
	}
	for k, v := range r.values {
		record[k] = v
	}

	defs := make([]metricDef, 0, len(r.metrics))
	for _, d := range r.metrics {
		defs = append(defs, d)
	}

	record["_aws"] = emfDirective{
		Timestamp: time.Now().UnixMilli(),
		CloudWatchMetrics: []cwMetric{{
			Namespace:  r.namespace,
			Dimensions: [][]string{dimNames},
			Metrics:    defs,
		}},
	}

	line, err := json.Marshal(record)
	if err != nil {
		fmt.Fprintf(os.Stderr, "metrics: failed to marshal record: %v\n", err)
		return
	}
	fmt.Fprintln(os.Stdout, string(line))
}
