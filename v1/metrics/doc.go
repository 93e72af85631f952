// Package metrics provides Prometheus-based metrics for the retrieval engine.
//
// NewMetrics builds an isolated registry whose metrics all carry a constant
// `service` label, and an HTTP server exposing it at /metrics. *Metrics also
// implements observability.Observer, so any component that accepts an
// Observer (the rag manager, the redis cache, the bolt backend) reports into
// operations_total and operation_duration_seconds.
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", Namespace: "ragcore", ServiceName: "ragcore"})
//	manager := rag.NewManager(rag.Params{..., Observer: m})
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule,
//		fx.Provide(func() metrics.Config { return metrics.Config{Address: ":9090"} }),
//	)
package metrics
