package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "collaborate",
		Name:      "active_rooms",
		Help:      "Number of rooms currently open",
	})

	activeCollaborators = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "collaborate",
		Name:      "active_collaborators",
		Help:      "Number of collaborators currently joined to a room",
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "collaborate",
		Name:      "events_total",
		Help:      "Total client events received, by envelope type",
	}, []string{"type"})

	eventErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "collaborate",
		Name:      "event_errors_total",
		Help:      "Total client events rejected, by reason",
	}, []string{"reason"})

	broadcastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "collaborate",
		Name:      "broadcast_failures_total",
		Help:      "Total per-member sends that failed during a broadcast",
	})
)

func RoomOpened() { activeRooms.Inc() }
func RoomClosed() { activeRooms.Dec() }

func MemberJoined() { activeCollaborators.Inc() }
func MemberLeft()   { activeCollaborators.Dec() }

func EventReceived(eventType string) { eventsTotal.WithLabelValues(eventType).Inc() }
func EventRejected(reason string)    { eventErrors.WithLabelValues(reason).Inc() }
func BroadcastFailure()              { broadcastFailures.Inc() }
