package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_connected_clients",
		Help: "Number of connected realtime clients",
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_total",
		Help: "Total number of realtime events delivered, by event name",
	}, []string{"event"})

	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_dropped_total",
		Help: "Total number of frames dropped because a client buffer was full",
	})
)
