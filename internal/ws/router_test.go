package ws

import (
	"context"
	"errors"
	"testing"

	"github.com/PriyaG26/Chat-app/internal/model"
	"github.com/PriyaG26/Chat-app/internal/presence"
)

type routeHandle struct {
	userID   string
	connID   string
	received []*model.Message
	full     bool
}

func (h *routeHandle) UserID() string { return h.userID }
func (h *routeHandle) ConnID() string { return h.connID }
func (h *routeHandle) Deliver(event string, payload any) bool {
	if h.full {
		return false
	}
	if m, ok := payload.(*model.Message); ok {
		h.received = append(h.received, m)
	}
	return true
}

type fakeMembership struct {
	members map[string][]string
	err     error
}

func (f *fakeMembership) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.members[groupID], nil
}

func strptr(s string) *string { return &s }

func directMessage(sender, receiver string) *model.Message {
	return &model.Message{ID: "m1", SenderID: sender, ReceiverID: strptr(receiver), Text: "hi"}
}

func TestRouteDirectReachesReceiverAndSenderDevices(t *testing.T) {
	reg := presence.NewRegistry()
	bobPhone := &routeHandle{userID: "bob", connID: "b1"}
	bobLaptop := &routeHandle{userID: "bob", connID: "b2"}
	alicePhone := &routeHandle{userID: "alice", connID: "a1"}
	reg.Register(bobPhone)
	reg.Register(bobLaptop)
	reg.Register(alicePhone)

	rt := NewRouter(reg, &fakeMembership{})
	notified := rt.Route(context.Background(), directMessage("alice", "bob"))

	if len(notified) != 3 {
		t.Fatalf("expected 3 notified handles, got %d", len(notified))
	}
	for _, h := range []*routeHandle{bobPhone, bobLaptop, alicePhone} {
		if len(h.received) != 1 {
			t.Errorf("handle %s received %d messages, want 1", h.connID, len(h.received))
		}
	}
}

func TestRouteDirectOfflineReceiver(t *testing.T) {
	reg := presence.NewRegistry()
	alicePhone := &routeHandle{userID: "alice", connID: "a1"}
	reg.Register(alicePhone)

	rt := NewRouter(reg, &fakeMembership{})
	notified := rt.Route(context.Background(), directMessage("alice", "bob"))

	// Only the sender's own device is reachable; that is still a success.
	if len(notified) != 1 {
		t.Fatalf("expected 1 notified handle, got %d", len(notified))
	}
	if len(alicePhone.received) != 1 {
		t.Errorf("sender device received %d messages, want 1", len(alicePhone.received))
	}
}

func TestRouteSelfMessageDeliveredOnce(t *testing.T) {
	reg := presence.NewRegistry()
	alicePhone := &routeHandle{userID: "alice", connID: "a1"}
	reg.Register(alicePhone)

	rt := NewRouter(reg, &fakeMembership{})
	rt.Route(context.Background(), directMessage("alice", "alice"))

	if len(alicePhone.received) != 1 {
		t.Fatalf("self message delivered %d times to one connection, want 1", len(alicePhone.received))
	}
}

func TestRouteGroupFansOutToMembersOnly(t *testing.T) {
	reg := presence.NewRegistry()
	alice := &routeHandle{userID: "alice", connID: "a1"}
	bob := &routeHandle{userID: "bob", connID: "b1"}
	eve := &routeHandle{userID: "eve", connID: "e1"}
	reg.Register(alice)
	reg.Register(bob)
	reg.Register(eve)

	rt := NewRouter(reg, &fakeMembership{members: map[string][]string{
		"g1": {"alice", "bob", "carol"},
	}})
	msg := &model.Message{ID: "m2", SenderID: "alice", GroupID: strptr("g1"), Text: "hello group"}
	notified := rt.Route(context.Background(), msg)

	// carol is a member but offline; eve is online but not a member.
	if len(notified) != 2 {
		t.Fatalf("expected 2 notified handles, got %d", len(notified))
	}
	if len(alice.received) != 1 || len(bob.received) != 1 {
		t.Error("online members should each receive the message once")
	}
	if len(eve.received) != 0 {
		t.Error("non-member must not receive the group message")
	}
}

func TestRouteGroupMembershipStoreFailure(t *testing.T) {
	reg := presence.NewRegistry()
	alice := &routeHandle{userID: "alice", connID: "a1"}
	reg.Register(alice)

	rt := NewRouter(reg, &fakeMembership{err: errors.New("store down")})
	msg := &model.Message{ID: "m3", SenderID: "alice", GroupID: strptr("g1"), Text: "hi"}
	notified := rt.Route(context.Background(), msg)

	if notified != nil {
		t.Errorf("expected no deliveries when membership cannot be resolved, got %d", len(notified))
	}
	if len(alice.received) != 0 {
		t.Error("no member should be notified when membership resolution fails")
	}
}

func TestRouteSkipsFullHandles(t *testing.T) {
	reg := presence.NewRegistry()
	stuck := &routeHandle{userID: "bob", connID: "b1", full: true}
	healthy := &routeHandle{userID: "bob", connID: "b2"}
	reg.Register(stuck)
	reg.Register(healthy)

	rt := NewRouter(reg, &fakeMembership{})
	notified := rt.Route(context.Background(), directMessage("alice", "bob"))

	if len(notified) != 1 {
		t.Fatalf("expected only the healthy handle notified, got %d", len(notified))
	}
	if notified[0].ConnID() != "b2" {
		t.Errorf("notified handle = %s, want b2", notified[0].ConnID())
	}
}
