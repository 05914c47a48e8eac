package seqring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes a ring's counters as Prometheus metrics. It is opt-in:
// construct one and register it with a registry; the ring itself never
// touches Prometheus.
type Collector struct {
	ring *Ring

	pushes       *prometheus.Desc
	pops         *prometheus.Desc
	emptyPolls   *prometheus.Desc
	overruns     *prometheus.Desc
	skipped      *prometheus.Desc
	claimRetries *prometheus.Desc
	generation   *prometheus.Desc
	capacity     *prometheus.Desc
}

// NewCollector creates a collector for r. The name label distinguishes rings
// when a process registers more than one.
func NewCollector(r *Ring, name string) *Collector {
	labels := prometheus.Labels{"ring": name}
	desc := func(suffix, help string) *prometheus.Desc {
		return prometheus.NewDesc("seqring_ring_"+suffix, help, nil, labels)
	}
	return &Collector{
		ring:         r,
		pushes:       desc("pushes_total", "Messages published into the ring"),
		pops:         desc("pops_total", "Messages delivered to readers"),
		emptyPolls:   desc("empty_polls_total", "Pops that found no new data"),
		overruns:     desc("overruns_total", "Reader resyncs after being lapped by the writer"),
		skipped:      desc("skipped_messages_total", "Messages dropped by reader resyncs"),
		claimRetries: desc("claim_retries_total", "Shared-cursor claim attempts lost to another goroutine"),
		generation:   desc("generation", "Current generation of the ring"),
		capacity:     desc("capacity_slots", "Fixed slot count of the ring"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pushes
	ch <- c.pops
	ch <- c.emptyPolls
	ch <- c.overruns
	ch <- c.skipped
	ch <- c.claimRetries
	ch <- c.generation
	ch <- c.capacity
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.ring.Stats()
	ch <- prometheus.MustNewConstMetric(c.pushes, prometheus.CounterValue, float64(st.Pushes))
	ch <- prometheus.MustNewConstMetric(c.pops, prometheus.CounterValue, float64(st.Pops))
	ch <- prometheus.MustNewConstMetric(c.emptyPolls, prometheus.CounterValue, float64(st.EmptyPolls))
	ch <- prometheus.MustNewConstMetric(c.overruns, prometheus.CounterValue, float64(st.Overruns))
	ch <- prometheus.MustNewConstMetric(c.skipped, prometheus.CounterValue, float64(st.Skipped))
	ch <- prometheus.MustNewConstMetric(c.claimRetries, prometheus.CounterValue, float64(st.ClaimRetries))
	ch <- prometheus.MustNewConstMetric(c.generation, prometheus.GaugeValue, float64(c.ring.Generation()))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(Capacity))
}
