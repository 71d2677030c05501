// Package relay pushes newly arrived ticket activity to whichever live
// connection is watching the ticket. Delivery is best effort: the staff
// console refreshes ticket state on its own, so a missed push is a missed
// nudge, not data loss.
package relay

import (
	"log"

	"helpdesk-backend/internal/registry"
)

type Relay struct {
	reg *registry.Registry
}

func New(reg *registry.Registry) *Relay {
	return &Relay{reg: reg}
}

// Notify sends content as a text frame to the ticket's live connection.
// Returns whether the frame was handed to a connection; callers treat either
// outcome as success. No queuing, no retry.
func (r *Relay) Notify(ticketID int64, content string) bool {
	conn, ok := r.reg.Lookup(ticketID)
	if !ok {
		incDropped()
		return false
	}

	if err := conn.WriteText(content); err != nil {
		log.Printf("relay: write to ticket %d connection failed: %v", ticketID, err)
		incDropped()
		return false
	}

	incDelivered()
	return true
}
