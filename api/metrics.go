package api

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/9seconds/relaymap/relaylib"
)

const metricsNamespace = "relaymap"

func registerMetrics(registry *prometheus.Registry, set relaylib.ClusterSet, stats *relaylib.Stats) {
	statGauge := func(name, help string, value func(relaylib.StatsSnapshot) int) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(value(stats.Snapshot()))
		})
	}

	valueGauge := func(name, help string, value uint64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(value)
		})
	}

	registry.MustRegister(
		statGauge("records", "Number of relays found in consensus",
			func(s relaylib.StatsSnapshot) int { return s.Records }),
		statGauge("skipped_blocks", "Number of malformed relay blocks",
			func(s relaylib.StatsSnapshot) int { return s.Skipped }),
		statGauge("filtered", "Number of relays without required flags",
			func(s relaylib.StatsSnapshot) int { return s.Filtered }),
		statGauge("points", "Number of geocoded relays",
			func(s relaylib.StatsSnapshot) int { return s.Points }),
		statGauge("unresolved", "Number of relays which were not geocoded",
			func(s relaylib.StatsSnapshot) int { return s.Unresolved }),
		statGauge("clusters", "Number of clusters",
			func(s relaylib.StatsSnapshot) int { return s.Clusters }),
		valueGauge("cluster_value_min", "Minimal value of a cluster", set.Min),
		valueGauge("cluster_value_max", "Maximal value of a cluster", set.Max),
	)
}
