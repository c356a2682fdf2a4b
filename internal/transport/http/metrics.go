package httptransport

import "expvar"

var (
	metricHTTPInternalErrors = expvar.NewInt("http_internal_errors_total")
	metricAuthFailures       = expvar.NewInt("operator_auth_failures_total")
)
