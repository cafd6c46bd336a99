package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus counters for the daemon's hot paths
var (
	ActionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutarr_actions_applied_total",
		Help: "Timeline actions applied, by action type",
	}, []string{"action"})

	HistoryOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutarr_history_ops_total",
		Help: "Undo and redo operations",
	}, []string{"op"})

	Autosaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutarr_autosaves_total",
		Help: "Autosave flushes, by outcome (saved, skipped, failed)",
	}, []string{"outcome"})

	CutApplications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutarr_cut_applications_total",
		Help: "Cut application passes, by outcome (changed, unchanged, failed)",
	}, []string{"outcome"})
)
