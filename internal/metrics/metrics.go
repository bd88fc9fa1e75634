package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rt_active_connections",
		Help: "Active websocket connections",
	})
	RoomMembers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rt_room_members",
		Help: "Current members per room",
	}, []string{"room"})
	PushesDelivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rt_pushes_delivered_total",
		Help: "Push envelopes delivered to local sockets",
	}, []string{"event"})
	PushesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rt_pushes_dropped_total",
		Help: "Push envelopes dropped due to slow consumers",
	})
)

func Init() {
	prometheus.MustRegister(Connections, RoomMembers, PushesDelivered, PushesDropped)
}
