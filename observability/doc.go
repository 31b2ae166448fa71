// Package observability provides OpenTelemetry tracing and metrics for
// providers and the channels they open.
//
// Tracing:
//
//	cfg := observability.DefaultTracerConfig("xnio")
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mcfg := observability.DefaultMeterConfig("xnio")
//	mp, err := observability.InitMeter(ctx, &mcfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("xnio"))
//
// Per-channel tracking:
//
//	cc := observability.NewConnContext("nio", "TCP Server", connID, metrics)
//	ctx, span := cc.Open(ctx, observability.SpanTCPAccept)
//	defer cc.Close(ctx, span, err)
//
// Health:
//
//	health := observability.Collect(ctx, "xnio", version, manager)
package observability
