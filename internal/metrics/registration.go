package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsTotal counts registration workflow outcomes by terminal
	// status.
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datamesh_registrations_total",
			Help: "Total number of completed data product registration workflows",
		},
		[]string{"status"},
	)

	// NotificationsPublished counts events published to the mesh event bus.
	NotificationsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datamesh_notifications_published_total",
			Help: "Total number of notification events published to the event bus",
		},
	)
)
