package metrics

import "github.com/prometheus/client_golang/prometheus"

// ResultCacheTotal counts result-cache lookups by outcome ("hit"/"miss").
var ResultCacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "prizedex",
		Name:      "result_cache_total",
		Help:      "Result cache lookups by outcome",
	},
	[]string{"result"},
)

// LoadedRecords reports how many prize documents the loader found or
// inserted at startup.
var LoadedRecords = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "prizedex",
		Name:      "loaded_records",
		Help:      "Number of prize records in the store after load",
	},
)

// RegisterCollectors registers the non-middleware collectors. Call once
// at startup.
func RegisterCollectors() {
	prometheus.MustRegister(ResultCacheTotal)
	prometheus.MustRegister(LoadedRecords)
}
