/*
Package observability exposes simulation metrics to Prometheus.

Metrics are recorded through domain.LifecycleHooks, so any Simulator can be
instrumented with mrsim.WithHooks(metrics.Hooks()).
*/
package observability
