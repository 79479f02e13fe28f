package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_clients",
		Help: "Number of currently connected clients",
	})

	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total inbound frames routed by type",
	}, []string{"type"})

	OutboundDelivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_outbound_delivered_total",
		Help: "Total lines written to clients by outbound message type",
	}, []string{"type"})

	Disconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_disconnects_total",
		Help: "Connections removed from the room by reason",
	}, []string{"reason"})

	AcceptErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_accept_errors_total",
		Help: "Accept failures on open listeners, each followed by a retry",
	})

	EventProcessingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_event_processing_seconds",
		Help:    "Time to process each event type, including the queue drain",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(OutboundDelivered)
	prometheus.MustRegister(Disconnects)
	prometheus.MustRegister(AcceptErrors)
	prometheus.MustRegister(EventProcessingDuration)
}
