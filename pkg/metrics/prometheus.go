package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
// Collectors live on a private registry so a run can be dumped to a textfile.
type Recorder struct {
	registry       *prometheus.Registry
	fetchLatency   *prometheus.HistogramVec
	assetResults   *prometheus.CounterVec
	predictedPrice *prometheus.GaugeVec
	portfolioValue *prometheus.GaugeVec
	runDuration    prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fincast_history_fetch_duration_seconds",
				Help:    "Duration of history fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol"},
		),
		assetResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_asset_results_total",
				Help: "Per-asset forecast outcomes",
			},
			[]string{"status", "kind"},
		),
		predictedPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincast_predicted_price",
				Help: "Final forecast price for a symbol",
			},
			[]string{"symbol", "model"},
		),
		portfolioValue: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincast_portfolio_value",
				Help: "Portfolio value in quote currency",
			},
			[]string{"point"},
		),
		runDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fincast_run_duration_seconds",
				Help: "Wall time of the last forecast run",
			},
		),
	}
}

// Registry exposes the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordFetchLatency records history fetch latency in seconds.
func (r *Recorder) RecordFetchLatency(symbol string, seconds float64) {
	r.fetchLatency.WithLabelValues(symbol).Observe(seconds)
}

// RecordAssetResult counts an asset outcome. kind is empty on success.
func (r *Recorder) RecordAssetResult(status, kind string) {
	r.assetResults.WithLabelValues(status, kind).Inc()
}

// RecordPrediction records the final forecast price for a symbol.
func (r *Recorder) RecordPrediction(symbol, model string, price float64) {
	r.predictedPrice.WithLabelValues(symbol, model).Set(price)
}

// RecordPortfolio records current and predicted totals.
func (r *Recorder) RecordPortfolio(current, predicted float64) {
	r.portfolioValue.WithLabelValues("current").Set(current)
	r.portfolioValue.WithLabelValues("predicted").Set(predicted)
}

// RecordRunDuration records the wall time of a run.
func (r *Recorder) RecordRunDuration(seconds float64) {
	r.runDuration.Set(seconds)
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
