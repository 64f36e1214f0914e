package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for the redirect pipeline counter.
const (
	outcomeRedirect = "redirect"
	outcomePreview  = "preview"
	outcomeFallback = "preview_fallback"
)

// redirectsTotal counts resolved /go requests by outcome.
var redirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "linktrack_requests_total",
		Help: "Resolved short-link requests by outcome.",
	},
	[]string{"outcome"},
)
