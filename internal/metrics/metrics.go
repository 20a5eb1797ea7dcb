// Package metrics defines the Prometheus collectors shared across components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// KeyValidations counts license validation attempts by outcome
	// (master, issued, used, invalid).
	KeyValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flashstore",
		Subsystem: "license",
		Name:      "key_validations_total",
		Help:      "License key validation attempts by outcome.",
	}, []string{"outcome"})

	// KeysBurned counts issued keys permanently invalidated.
	KeysBurned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flashstore",
		Subsystem: "license",
		Name:      "keys_burned_total",
		Help:      "Issued license keys burned.",
	})

	// CheckoutsCompleted counts checkout sessions reaching RESULT.
	CheckoutsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flashstore",
		Subsystem: "checkout",
		Name:      "completed_total",
		Help:      "Checkout sessions completed successfully.",
	})

	// CheckoutsFailed counts checkout sessions where issuance failed.
	CheckoutsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flashstore",
		Subsystem: "checkout",
		Name:      "failed_total",
		Help:      "Checkout sessions that failed during key issuance.",
	})

	// Broadcasts counts websocket hub broadcasts by message type.
	Broadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flashstore",
		Subsystem: "websocket",
		Name:      "broadcasts_total",
		Help:      "WebSocket broadcasts by message type.",
	}, []string{"type"})

	// PortalFlashes counts portal sessions reaching EXECUTING.
	PortalFlashes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flashstore",
		Subsystem: "portal",
		Name:      "flashes_total",
		Help:      "Portal flash executions started.",
	})
)
