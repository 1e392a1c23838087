package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "privsend_operations_total", Help: "Dispatched operations by action and outcome"},
		[]string{"action", "outcome"},
	)
	PlatformFeeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "privsend_platform_fee_base_units_total", Help: "Platform fees collected, in base units"},
		[]string{"token"},
	)
)

func init() {
	prometheus.MustRegister(OperationsTotal, PlatformFeeTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
