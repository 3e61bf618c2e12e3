package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queuedFiles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "queue_submissions_total",
		Help: "Количество файлов, поставленных в очередь печати",
	})

	unmatchedRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unmatched_line_items_total",
		Help: "Количество зафиксированных неразобранных позиций",
	}, []string{"reason"})
)
