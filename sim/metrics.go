package sim

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meshmessaging/usenix23/metrics"
)

const namespace = "sim"

var (
	tickDuration = metrics.NewHistogramWithBuckets(
		"tick_seconds",
		namespace,
		"wall time to simulate a tick",
		[]string{},
		prometheus.ExponentialBuckets(0.0001, 2, 16),
	).WithLabelValues()

	linksPerTick = metrics.NewHistogramWithBuckets(
		"links",
		namespace,
		"number of directed links per tick",
		[]string{},
		prometheus.ExponentialBuckets(1, 2, 16),
	).WithLabelValues()

	ticksCounter = metrics.NewCounter(
		"ticks",
		namespace,
		"number of simulated ticks",
		[]string{},
	).WithLabelValues()

	originated = metrics.NewCounter(
		"originated",
		namespace,
		"number of messages originated by the simulator",
		[]string{},
	).WithLabelValues()

	linkedUsers = metrics.NewGauge(
		"linked_users",
		namespace,
		"number of users with at least one link on the last tick",
		[]string{},
	).WithLabelValues()
)
