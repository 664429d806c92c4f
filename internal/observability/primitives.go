package observability

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
)

// family is the shared part of every metric: its identity and the label
// names each series is keyed by.
type family struct {
	name   string
	help   string
	kind   string
	labels []string
}

func (f family) header(w io.Writer) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", f.name, f.help, f.name, f.kind)
	return err
}

// ValueVec holds one float per label set. Counters and gauges differ only
// in which methods callers use.
type ValueVec struct {
	family
	mu     sync.RWMutex
	series map[string]float64
}

type CounterVec = ValueVec
type GaugeVec = ValueVec

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &ValueVec{family: family{name: name, help: help, kind: "counter", labels: labels}, series: map[string]float64{}}
}

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	return &ValueVec{family: family{name: name, help: help, kind: "gauge", labels: labels}, series: map[string]float64{}}
}

func (v *ValueVec) Inc(values ...string) { v.Add(1, values...) }

func (v *ValueVec) Add(delta float64, values ...string) {
	if v == nil {
		return
	}
	key := labelString(v.labels, values)
	v.mu.Lock()
	v.series[key] += delta
	v.mu.Unlock()
}

func (v *ValueVec) Set(val float64, values ...string) {
	if v == nil {
		return
	}
	key := labelString(v.labels, values)
	v.mu.Lock()
	v.series[key] = val
	v.mu.Unlock()
}

func (v *ValueVec) Value(values ...string) float64 {
	if v == nil {
		return 0
	}
	key := labelString(v.labels, values)
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.series[key]
}

func (v *ValueVec) WritePrometheus(w io.Writer) error {
	if v == nil {
		return nil
	}
	if err := v.header(w); err != nil {
		return err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if len(v.labels) == 0 {
		_, err := fmt.Fprintf(w, "%s %g\n", v.name, v.series[""])
		return err
	}
	for _, key := range sortedKeys(v.series) {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", v.name, key, v.series[key]); err != nil {
			return err
		}
	}
	return nil
}

// Gauge is an unlabelled gauge. It always exposes a sample, zero included.
type Gauge struct {
	vec *ValueVec
}

func NewGauge(name, help string) *Gauge {
	return &Gauge{vec: NewGaugeVec(name, help, nil)}
}

func (g *Gauge) Set(v float64) {
	if g != nil {
		g.vec.Set(v)
	}
}

func (g *Gauge) Add(delta float64) {
	if g != nil {
		g.vec.Add(delta)
	}
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	return g.vec.Value()
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.vec.WritePrometheus(w)
}

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

type HistogramVec struct {
	family
	bounds []float64
	mu     sync.RWMutex
	series map[string]*histogramSeries
}

// histogramSeries keeps per-bucket (non-cumulative) counts; the last slot
// catches everything above the highest bound.
type histogramSeries struct {
	buckets []uint64
	sum     float64
	count   uint64
}

func NewHistogramVec(name, help string, labels []string, bounds []float64) *HistogramVec {
	if len(bounds) == 0 {
		bounds = defaultBuckets
	}
	bounds = slices.Clone(bounds)
	slices.Sort(bounds)
	return &HistogramVec{
		family: family{name: name, help: help, kind: "histogram", labels: labels},
		bounds: bounds,
		series: map[string]*histogramSeries{},
	}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	key := labelString(h.labels, values)
	idx, _ := slices.BinarySearch(h.bounds, v)

	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.series[key]
	if s == nil {
		s = &histogramSeries{buckets: make([]uint64, len(h.bounds)+1)}
		h.series[key] = s
	}
	s.buckets[idx]++
	s.sum += v
	s.count++
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if err := h.header(w); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	keys := make([]string, 0, len(h.series))
	for k := range h.series {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, key := range keys {
		s := h.series[key]
		var cumulative uint64
		for i, bound := range h.bounds {
			cumulative += s.buckets[i]
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(key, fmt.Sprintf("%g", bound)), cumulative); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n%s_sum%s %g\n%s_count%s %d\n",
			h.name, withLe(key, "+Inf"), s.count,
			h.name, key, s.sum,
			h.name, key, s.count,
		); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// labelString renders values against names in exposition form. Missing or
// empty values become "unknown".
func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		parts[i] = name + `="` + labelEscaper.Replace(val) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func withLe(labels string, le string) string {
	pair := `le="` + labelEscaper.Replace(le) + `"`
	if labels == "" {
		return "{" + pair + "}"
	}
	return strings.TrimSuffix(labels, "}") + "," + pair + "}"
}
