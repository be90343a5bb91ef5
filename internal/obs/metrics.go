package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// ScansTotal counts item code entries by resolution outcome.
	ScansTotal *prometheus.CounterVec
	// TransactionsTotal counts finalized transactions by payment method.
	TransactionsTotal *prometheus.CounterVec
	// VoidsTotal counts void operations by kind (line, cart, transaction).
	VoidsTotal *prometheus.CounterVec
	// OverrideAttemptsTotal counts manager/drawer code submissions by result.
	OverrideAttemptsTotal *prometheus.CounterVec
	// LoginsTotal counts cashier login attempts by result.
	LoginsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers the terminal's Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Count of item code entries by outcome.",
		}, []string{"result"})
		TransactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Count of finalized transactions by payment method.",
		}, []string{"method"})
		VoidsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voids_total",
			Help:      "Count of void operations by kind.",
		}, []string{"kind"})
		OverrideAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "override_attempts_total",
			Help:      "Count of authorization code submissions by result.",
		}, []string{"result"})
		LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Count of cashier login attempts by result.",
		}, []string{"result"})

		reg.MustRegister(ScansTotal, TransactionsTotal, VoidsTotal, OverrideAttemptsTotal, LoginsTotal)
	})
}

// CountOverride records an authorization attempt outcome if metrics are registered.
func CountOverride(result string) {
	if OverrideAttemptsTotal != nil {
		OverrideAttemptsTotal.WithLabelValues(result).Inc()
	}
}

// CountScan records a code entry outcome if metrics are registered.
func CountScan(result string) {
	if ScansTotal != nil {
		ScansTotal.WithLabelValues(result).Inc()
	}
}

// CountTransaction records a finalized transaction if metrics are registered.
func CountTransaction(method string) {
	if TransactionsTotal != nil {
		TransactionsTotal.WithLabelValues(method).Inc()
	}
}

// CountVoid records a void operation if metrics are registered.
func CountVoid(kind string) {
	if VoidsTotal != nil {
		VoidsTotal.WithLabelValues(kind).Inc()
	}
}

// CountLogin records a login attempt outcome if metrics are registered.
func CountLogin(result string) {
	if LoginsTotal != nil {
		LoginsTotal.WithLabelValues(result).Inc()
	}
}
