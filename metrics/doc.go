// Package metrics exports request metrics for the engine dispatch pipeline
// through OpenTelemetry instruments backed by a Prometheus exporter.
//
// A Recorder owns four instruments on an isolated Prometheus registry:
//
//   - http_requests_total: counter of dispatched requests, labelled by
//     method, matched route pattern and status
//   - http_request_duration_seconds: request latency histogram
//   - http_requests_in_flight: gauge of requests currently in the pipeline
//   - http_pipeline_errors_total: counter of internal pipeline errors
//
// The matched route pattern (e.g. /users/{id}) is used instead of the raw
// path so label cardinality stays bounded.
//
// Usage:
//
//	rec, err := metrics.NewRecorder(metrics.WithServiceName("api"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rec.Attach(e)
//	e.GET("/metrics", func(c *engine.Context) {
//	    rec.Handler().ServeHTTP(c.Writer(), c.Request())
//	})
package metrics
