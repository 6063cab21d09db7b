package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flexlist"

// Collector exports the timing metrics as Prometheus counters and gauges.
type Collector struct {
	metrics []*TimingMetric
	count   map[string]*prometheus.Desc
	seconds map[string]*prometheus.Desc
	max     map[string]*prometheus.Desc
}

// NewCollector returns a Collector over ms, or over every timing metric
// when ms is empty.
func NewCollector(ms ...*TimingMetric) *Collector {
	if len(ms) == 0 {
		ms = AllTimingMetrics()
	}
	c := &Collector{
		metrics: ms,
		count:   make(map[string]*prometheus.Desc, len(ms)),
		seconds: make(map[string]*prometheus.Desc, len(ms)),
		max:     make(map[string]*prometheus.Desc, len(ms)),
	}
	for _, m := range ms {
		c.count[m.name] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, m.name, "total"), m.help+" Number of calls.", nil, nil)
		c.seconds[m.name] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, m.name, "seconds_total"), m.help+" Time spent.", nil, nil)
		c.max[m.name] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, m.name, "max_seconds"), m.help+" Longest call.", nil, nil)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- c.count[m.name]
		ch <- c.seconds[m.name]
		ch <- c.max[m.name]
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(c.count[m.name], prometheus.CounterValue, float64(m.Count()))
		ch <- prometheus.MustNewConstMetric(c.seconds[m.name], prometheus.CounterValue, m.Total().Seconds())
		ch <- prometheus.MustNewConstMetric(c.max[m.name], prometheus.GaugeValue, m.Max().Seconds())
	}
}

// Handler serves the timing metrics on a private registry, so repeated
// calls do not collide.
func Handler() (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector()); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}
