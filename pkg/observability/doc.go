/*
Package observability turns activation lifecycle events into Prometheus metrics
and structured log lines.

Everything here is plugged in through domain.LifecycleHooks, so the core never
imports a metrics library:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	eng, _ := postman.New(postman.WithLifecycleHooks(
		observability.Chain(m.Hooks(), observability.LogHooks(logger)),
	))
*/
package observability
