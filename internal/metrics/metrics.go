// Package metrics exposes Prometheus counters for shift operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shift_core"

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Shift status transitions by event and result",
		},
		[]string{"event", "result"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Notification deliveries by channel, kind and status",
		},
		[]string{"channel", "kind", "status"},
	)

	broadcastRecipientsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "broadcast_recipients_total",
			Help:      "Urgent broadcast recipients by outcome",
		},
		[]string{"result"},
	)

	digestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "digests_total",
			Help:      "Batched notification entries flushed by outcome",
		},
		[]string{"result"},
	)

	automationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "closure",
			Name:      "automated_transitions_total",
			Help:      "Time-driven shift transitions by event and result",
		},
		[]string{"event", "result"},
	)
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func ObserveTransition(event string, err error) {
	transitionsTotal.WithLabelValues(event, result(err)).Inc()
}

func ObserveNotification(channel, kind, status string) {
	notificationsTotal.WithLabelValues(channel, kind, status).Inc()
}

func ObserveBroadcast(sent, failed int) {
	broadcastRecipientsTotal.WithLabelValues("sent").Add(float64(sent))
	broadcastRecipientsTotal.WithLabelValues("failed").Add(float64(failed))
}

func ObserveDigest(err error) {
	digestsTotal.WithLabelValues(result(err)).Inc()
}

func ObserveAutomation(event string, err error) {
	automationTotal.WithLabelValues(event, result(err)).Inc()
}
