package sse

import (
	"time"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
)

// PriceNotifier is the interface the sync worker uses to emit catalog events.
type PriceNotifier interface {
	NotifyPriceChanged(change models.PriceChange)
	NotifyCatalogRefreshed(peptides int)
}

// HubNotifier implements PriceNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyPriceChanged(change models.PriceChange) {
	if n.hub.ClientCount() == 0 {
		return
	}
	oldPrice, newPrice := change.OldPrice, change.NewPrice
	n.hub.Broadcast(&PriceEvent{
		Event:       EventPriceChanged,
		PeptideID:   change.PeptideID,
		PeptideName: change.PeptideName,
		RetailerID:  change.RetailerID,
		Size:        change.Size,
		OldPrice:    &oldPrice,
		NewPrice:    &newPrice,
		Timestamp:   time.Now(),
	})
}

func (n *HubNotifier) NotifyCatalogRefreshed(peptides int) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&PriceEvent{
		Event:     EventCatalogRefreshed,
		Peptides:  &peptides,
		Timestamp: time.Now(),
	})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyPriceChanged(change models.PriceChange) {}
func (n *NopNotifier) NotifyCatalogRefreshed(peptides int)          {}
