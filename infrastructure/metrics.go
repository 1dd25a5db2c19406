// infrastructure/metrics.go
package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/clipstack/video-hosting-service/domain"
)

var (
	webhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Inbound transcoding-provider webhook events by type and outcome.",
	}, []string{"type", "outcome"})

	assetMirrorFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "asset_mirror_failures_total",
		Help: "Failed attempts to mirror a derived asset into owned storage.",
	})
)

func CountMirrorFailure() {
	assetMirrorFailuresTotal.Inc()
}

func countWebhookEvent(eventType, outcome string) {
	webhookEventsTotal.WithLabelValues(webhookTypeLabel(eventType), outcome).Inc()
}

// webhookTypeLabel keeps the type label bounded: the body is
// caller-controlled, and an unauthenticated sender must not be able to mint
// new series.
func webhookTypeLabel(eventType string) string {
	switch eventType {
	case domain.EventAssetCreated, domain.EventAssetReady, domain.EventAssetErrored,
		domain.EventAssetDeleted, domain.EventTrackReady, "unknown":
		return eventType
	default:
		return "other"
	}
}
