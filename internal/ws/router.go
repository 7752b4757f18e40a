package ws

import (
	"context"

	"github.com/PriyaG26/Chat-app/internal/logger"
	"github.com/PriyaG26/Chat-app/internal/model"
	"github.com/PriyaG26/Chat-app/internal/presence"
)

// MembershipResolver yields a group's current member set from the record
// store. No caching: routing always reflects persisted membership.
// Implemented by repository.GroupRepository.
type MembershipResolver interface {
	MemberIDs(ctx context.Context, groupID string) ([]string, error)
}

// Router computes the delivery targets for a newly persisted message and
// pushes it over their live connections. Delivery is best effort: recipients
// without a live connection are skipped, the message is already durable.
type Router struct {
	reg        *presence.Registry
	membership MembershipResolver
}

func NewRouter(reg *presence.Registry, membership MembershipResolver) *Router {
	return &Router{reg: reg, membership: membership}
}

// Route pushes msg to every connected participant and returns the handles
// actually notified. Callers invoke it synchronously after persistence, one
// message at a time, so per-conversation push order equals persistence order.
func (rt *Router) Route(ctx context.Context, msg *model.Message) []presence.Handle {
	if msg.GroupID != nil {
		return rt.routeGroup(ctx, msg)
	}
	return rt.routeDirect(msg)
}

// routeGroup fans out to every member's connections, the sender's included.
// There is no per-group channel in the transport, so the per-member loop is
// the delivery mechanism.
func (rt *Router) routeGroup(ctx context.Context, msg *model.Message) []presence.Handle {
	memberIDs, err := rt.membership.MemberIDs(ctx, *msg.GroupID)
	if err != nil {
		// Store unavailable: assume no members reachable, never crash routing.
		logger.Errorf("route group=%s resolve members: %v", *msg.GroupID, err)
		return nil
	}
	var notified []presence.Handle
	seen := make(map[string]struct{}, 8)
	for _, uid := range memberIDs {
		notified = rt.deliverAll(uid, msg, seen, notified)
	}
	return notified
}

// routeDirect pushes to the receiver's connections and, for multi-device sync
// of the sender's other sessions, to the sender's own connections. Dedup per
// connection keeps a self-message from arriving twice on one handle.
func (rt *Router) routeDirect(msg *model.Message) []presence.Handle {
	var notified []presence.Handle
	seen := make(map[string]struct{}, 4)
	if msg.ReceiverID != nil {
		notified = rt.deliverAll(*msg.ReceiverID, msg, seen, notified)
	}
	return rt.deliverAll(msg.SenderID, msg, seen, notified)
}

func (rt *Router) deliverAll(userID string, msg *model.Message, seen map[string]struct{}, notified []presence.Handle) []presence.Handle {
	for _, h := range rt.reg.Lookup(userID) {
		if _, dup := seen[h.ConnID()]; dup {
			continue
		}
		seen[h.ConnID()] = struct{}{}
		if !h.Deliver(EventNewMessage, msg) {
			logger.Errorf("route drop message=%s user=%s conn=%s: send buffer full", msg.ID, userID, h.ConnID())
			continue
		}
		notified = append(notified, h)
	}
	return notified
}
