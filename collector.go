package checkedmem

import "github.com/prometheus/client_golang/prometheus"

// Collector exports the package counters as Prometheus metrics.
type Collector struct {
	copies    *prometheus.Desc
	bytes     *prometheus.Desc
	faults    *prometheus.Desc
	forwarded *prometheus.Desc
	installs  *prometheus.Desc
	probes    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "checkedmem", name), help, nil, nil)
	}
	return &Collector{
		copies:    desc("copies_total", "Checked copies that completed without a fault."),
		bytes:     desc("copied_bytes_total", "Bytes transferred by completed checked copies."),
		faults:    desc("faults_total", "Faults converted into errors."),
		forwarded: desc("forwarded_total", "Faults forwarded to the handler chain."),
		installs:  desc("installs_total", "Calls to Install that succeeded."),
		probes:    desc("probes_total", "Probes that completed without a fault."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.copies
	ch <- c.bytes
	ch <- c.faults
	ch <- c.forwarded
	ch <- c.installs
	ch <- c.probes
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := GetMetrics()
	ch <- prometheus.MustNewConstMetric(c.copies, prometheus.CounterValue, float64(m.Copies))
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(m.BytesCopied))
	ch <- prometheus.MustNewConstMetric(c.faults, prometheus.CounterValue, float64(m.Faults))
	ch <- prometheus.MustNewConstMetric(c.forwarded, prometheus.CounterValue, float64(m.Forwarded))
	ch <- prometheus.MustNewConstMetric(c.installs, prometheus.CounterValue, float64(m.Installs))
	ch <- prometheus.MustNewConstMetric(c.probes, prometheus.CounterValue, float64(m.Probes))
}
