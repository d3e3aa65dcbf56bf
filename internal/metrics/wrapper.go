package metrics

// MetricsWrapper adapts Metrics to the narrow metrics interfaces declared by
// the ml, session, report and ingest packages.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

// Scorer metrics

func (w *MetricsWrapper) MLPredictionsInc() {
	w.m.MLPredictions.Inc()
}

func (w *MetricsWrapper) MLFailuresInc() {
	w.m.MLFailures.Inc()
	w.m.ErrorsTotal.Inc()
}

func (w *MetricsWrapper) MLLatencyObserve(v float64) {
	w.m.MLLatency.Observe(v)
}

func (w *MetricsWrapper) MLModelAgeSet(v float64) {
	w.m.MLModelAge.Set(v)
}

func (w *MetricsWrapper) MLPredictionScoresObserve(v float64) {
	w.m.MLPredictionScores.Observe(v)
}

func (w *MetricsWrapper) FeatureDriftSet(feature string, v float64) {
	w.m.FeatureDrift.WithLabelValues(feature).Set(v)
}

// Session metrics

func (w *MetricsWrapper) PredictionRequestsInc() {
	w.m.PredictionRequests.Inc()
}

func (w *MetricsWrapper) PredictionRejectedInc() {
	w.m.PredictionRejected.Inc()
}

func (w *MetricsWrapper) LedgerSizeSet(v float64) {
	w.m.LedgerSize.Set(v)
}

func (w *MetricsWrapper) SuitabilityInc(suitability string) {
	w.m.Suitability.WithLabelValues(suitability).Inc()
}

// Export metrics

func (w *MetricsWrapper) ExportsInc(format string) {
	w.m.Exports.WithLabelValues(format).Inc()
}

func (w *MetricsWrapper) ExportFailuresInc() {
	w.m.ExportFailures.Inc()
	w.m.ErrorsTotal.Inc()
}

// Ingestion metrics

func (w *MetricsWrapper) MQTTMessagesInc() {
	w.m.MQTTMessages.Inc()
}

func (w *MetricsWrapper) MQTTInvalidPayloadInc() {
	w.m.MQTTInvalidPayload.Inc()
	w.m.ErrorsTotal.Inc()
}

// ErrorsInc counts an error not covered by a more specific metric.
func (w *MetricsWrapper) ErrorsInc() {
	w.m.ErrorsTotal.Inc()
}
