// Package metrics defines the Prometheus collectors of the casting portal.
// They are registered with the default registry on package init and exposed
// on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "audire"

// RegistrationsTotal counts completed registrations.
// Label:
//   - role: Performer, CastingDirector or ProductionManager
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered, by role.",
	},
	[]string{"role"},
)

// CastingsPublishedTotal counts castings created by directors.
// Label:
//   - category: the casting category label
var CastingsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "castings_published_total",
		Help:      "Total number of castings published, by category.",
	},
	[]string{"category"},
)

// ApplicationsTotal counts application attempts.
// Label:
//   - result: "submitted" or "duplicate"
var ApplicationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_total",
		Help:      "Total number of applications, by outcome.",
	},
	[]string{"result"},
)

// EventsPublishFailedTotal counts domain events that could not be
// delivered to the broker.
var EventsPublishFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_publish_failed_total",
		Help:      "Total number of domain events the broker rejected or never received.",
	},
	[]string{"event"},
)
