package membership

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks a single State's contribution to the protocol, in the
// same registerer-supplied, nil-tolerant style as the rest of the stack's
// metrics structs. A nil *Metrics is always safe to call methods on.
type Metrics struct {
	votesCast          prometheus.Counter
	generationsDecided prometheus.Counter
	splitVotesDetected prometheus.Counter
	currentMembers     prometheus.Gauge
}

// NewMetrics builds and registers a Metrics against registerer. Pass a nil
// registerer (or call with a *Metrics == nil) to disable metrics entirely.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		return nil, nil
	}

	m := &Metrics{
		votesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "membership_votes_cast_total",
			Help: "Number of votes this member has cast, across all generations.",
		}),
		generationsDecided: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "membership_generations_decided_total",
			Help: "Number of generations this member has decided (observed SM/SM for).",
		}),
		splitVotesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "membership_split_votes_detected_total",
			Help: "Number of split votes this member has detected.",
		}),
		currentMembers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "membership_current_members",
			Help: "Size of the member set at this member's latest decided generation.",
		}),
	}

	for _, c := range []prometheus.Collector{m.votesCast, m.generationsDecided, m.splitVotesDetected, m.currentMembers} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeVoteCast() {
	if m == nil {
		return
	}
	m.votesCast.Inc()
}

func (m *Metrics) observeGenerationDecided(memberCount int) {
	if m == nil {
		return
	}
	m.generationsDecided.Inc()
	m.currentMembers.Set(float64(memberCount))
}

func (m *Metrics) observeSplitVote() {
	if m == nil {
		return
	}
	m.splitVotesDetected.Inc()
}
