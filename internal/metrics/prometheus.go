// Package metrics provides MetricsCollector implementations.
package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/shadowslot/types"
)

// DefaultNamespace is the metrics namespace used when none is given.
const DefaultNamespace = "shadowslot"

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered on first use, so constructing one
// that is never exercised leaves the registerer untouched.
type PrometheusCollector struct {
	*NopMetrics

	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	elementResolutions prometheus.Counter
	slotsVisited       prometheus.Histogram
	assignmentPasses   prometheus.Histogram
	hostChildren       prometheus.Histogram
	mutations          *prometheus.CounterVec
	bulkRemovals       prometheus.Counter
	bulkClearedNames   prometheus.Histogram
	violations         *prometheus.CounterVec
	notifications      prometheus.Counter
	batchSize          prometheus.Histogram
	dispatches         *prometheus.CounterVec
	dropped            prometheus.Counter
}

var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace (defaults to "shadowslot" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &PrometheusCollector{NopMetrics: NewNop(), reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.elementResolutions = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "resolution",
			Name:      "element_resolutions_total",
			Help:      "Total shadow-tree scans that re-picked canonical slot elements.",
		})

		p.slotsVisited = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "resolution",
			Name:      "slots_visited",
			Help:      "Slot elements visited per element resolution.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8), // 1 .. 16384
		})

		p.assignmentPasses = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "resolution",
			Name:      "assignment_pass_seconds",
			Help:      "Duration of host-children assignment passes in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10), // 1µs .. ~0.26s
		})

		p.hostChildren = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "resolution",
			Name:      "assigned_children",
			Help:      "Host children distributed per assignment pass.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		})

		p.mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "mutation",
			Name:      "calls_total",
			Help:      "Total mutation hook calls by kind.",
		}, []string{"kind"})

		p.bulkRemovals = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "mutation",
			Name:      "bulk_removals_total",
			Help:      "Total assignment passes that took the remove-all fast path.",
		})

		p.bulkClearedNames = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "mutation",
			Name:      "bulk_cleared_names",
			Help:      "Names cleared per remove-all fast path.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		})

		p.violations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "mutation",
			Name:      "consistency_violations_total",
			Help:      "Total API misuse detected by slot bookkeeping, by kind.",
		}, []string{"kind"})

		p.notifications = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "notification",
			Name:      "drained_total",
			Help:      "Total slotchange notifications drained.",
		})

		p.batchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "notification",
			Name:      "batch_size",
			Help:      "Notifications per drained batch.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
		})

		p.dispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "notification",
			Name:      "dispatches_total",
			Help:      "Dispatch attempts by transport and result.",
		}, []string{"transport", "success"})

		p.dropped = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "notification",
			Name:      "dropped_total",
			Help:      "Notifications dropped because a subscriber was full.",
		})

		p.reg.MustRegister(p.elementResolutions)
		p.reg.MustRegister(p.slotsVisited)
		p.reg.MustRegister(p.assignmentPasses)
		p.reg.MustRegister(p.hostChildren)
		p.reg.MustRegister(p.mutations)
		p.reg.MustRegister(p.bulkRemovals)
		p.reg.MustRegister(p.bulkClearedNames)
		p.reg.MustRegister(p.violations)
		p.reg.MustRegister(p.notifications)
		p.reg.MustRegister(p.batchSize)
		p.reg.MustRegister(p.dispatches)
		p.reg.MustRegister(p.dropped)
	})
}

// ResolutionMetrics implementation

// RecordElementResolution counts a canonical element scan.
func (p *PrometheusCollector) RecordElementResolution(slots int) {
	p.ensureRegistered()
	p.elementResolutions.Inc()
	p.slotsVisited.Observe(float64(slots))
}

// RecordAssignmentPass observes pass duration and distributed children.
func (p *PrometheusCollector) RecordAssignmentPass(children int, duration float64) {
	p.ensureRegistered()
	p.assignmentPasses.Observe(duration)
	p.hostChildren.Observe(float64(children))
}

// MutationMetrics implementation

// RecordMutation counts a mutation hook call.
func (p *PrometheusCollector) RecordMutation(kind string) {
	p.ensureRegistered()
	p.mutations.WithLabelValues(kind).Inc()
}

// RecordBulkRemoval counts a remove-all fast path.
func (p *PrometheusCollector) RecordBulkRemoval(clearedNames int) {
	p.ensureRegistered()
	p.bulkRemovals.Inc()
	p.bulkClearedNames.Observe(float64(clearedNames))
}

// RecordConsistencyViolation counts API misuse.
func (p *PrometheusCollector) RecordConsistencyViolation(kind string) {
	p.ensureRegistered()
	p.violations.WithLabelValues(kind).Inc()
}

// NotificationMetrics implementation

// RecordNotifications counts a drained batch.
func (p *PrometheusCollector) RecordNotifications(count int) {
	p.ensureRegistered()
	p.notifications.Add(float64(count))
	p.batchSize.Observe(float64(count))
}

// RecordDispatch counts a dispatch attempt.
func (p *PrometheusCollector) RecordDispatch(transport string, success bool) {
	p.ensureRegistered()
	p.dispatches.WithLabelValues(transport, strconv.FormatBool(success)).Inc()
}

// RecordDroppedNotification counts a dropped notification.
func (p *PrometheusCollector) RecordDroppedNotification() {
	p.ensureRegistered()
	p.dropped.Inc()
}
