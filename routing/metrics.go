package routing

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meshmessaging/usenix23/metrics"
)

const namespace = "routing"

var (
	sentCounter = metrics.NewCounter(
		"sent",
		namespace,
		"number of originated messages",
		[]string{},
	).WithLabelValues()

	castCounter = metrics.NewCounter(
		"casts",
		namespace,
		"number of forward attempts by outcome",
		[]string{"outcome"},
	)
	castBounced   = castCounter.WithLabelValues("bounced")
	castDelivered = castCounter.WithLabelValues("delivered")
	castDropped   = castCounter.WithLabelValues("dropped")
	castRelayed   = castCounter.WithLabelValues("relayed")
	castStaged    = castCounter.WithLabelValues("staged")

	evictionCounter = metrics.NewCounter(
		"evictions",
		namespace,
		"number of carried entries evicted by exhausted budget",
		[]string{"reason"},
	)
	evictReplication = evictionCounter.WithLabelValues("replication")
	evictHops        = evictionCounter.WithLabelValues("hops")

	deliveryCounter = metrics.NewCounter(
		"deliveries",
		namespace,
		"number of plain messages unpacked at target",
		[]string{"kind"},
	)
	deliveryFirst     = deliveryCounter.WithLabelValues("first")
	deliveryDuplicate = deliveryCounter.WithLabelValues("duplicate")

	batchCounter = metrics.NewCounter(
		"batches",
		namespace,
		"number of created batches",
		[]string{},
	).WithLabelValues()

	batchSize = metrics.NewHistogramWithBuckets(
		"batch_members",
		namespace,
		"number of members per created batch",
		[]string{},
		prometheus.ExponentialBuckets(1, 2, 10),
	).WithLabelValues()
)
