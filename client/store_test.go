package client

import (
	"context"
	"testing"
	"time"

	"github.com/PriyaG26/Chat-app/internal/model"
)

type fakeFetcher struct {
	direct map[string][]model.Message
	group  map[string][]model.Message
}

func (f *fakeFetcher) DirectHistory(ctx context.Context, peerID string) ([]model.Message, error) {
	out := make([]model.Message, len(f.direct[peerID]))
	copy(out, f.direct[peerID])
	return out, nil
}

func (f *fakeFetcher) GroupHistory(ctx context.Context, groupID string) ([]model.Message, error) {
	out := make([]model.Message, len(f.group[groupID]))
	copy(out, f.group[groupID])
	return out, nil
}

func msg(id, sender, receiver string) model.Message {
	return model.Message{ID: id, SenderID: sender, ReceiverID: &receiver, Text: "t", CreatedAt: time.Now().UTC()}
}

func groupMsg(id, sender, groupID string) model.Message {
	return model.Message{ID: id, SenderID: sender, GroupID: &groupID, Text: "t", CreatedAt: time.Now().UTC()}
}

func TestStoreEchoSuppression(t *testing.T) {
	store := NewStore("alice")
	fetch := &fakeFetcher{direct: map[string][]model.Message{}}

	if err := store.Select(context.Background(), DirectSelection{PeerID: "bob"}, fetch); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	// The HTTP send response appends the message; the server also pushes it to
	// the sender's own socket. The count must end at 1, not 2.
	own := msg("m1", "alice", "bob")
	store.AppendOwn(own)
	store.ApplyPush(own)

	if got := len(store.Messages()); got != 1 {
		t.Fatalf("expected 1 message after send + echo, got %d", got)
	}
}

func TestStorePushFromPeerAppends(t *testing.T) {
	store := NewStore("alice")
	fetch := &fakeFetcher{direct: map[string][]model.Message{}}
	if err := store.Select(context.Background(), DirectSelection{PeerID: "bob"}, fetch); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	store.ApplyPush(msg("m1", "bob", "alice"))

	msgs := store.Messages()
	if len(msgs) != 1 || msgs[0].ID != "m1" {
		t.Fatalf("expected peer message appended, got %v", msgs)
	}
}

func TestStoreIgnoresNonSelectedConversations(t *testing.T) {
	store := NewStore("alice")
	fetch := &fakeFetcher{direct: map[string][]model.Message{}}
	if err := store.Select(context.Background(), DirectSelection{PeerID: "bob"}, fetch); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	// Direct message from a different peer.
	store.ApplyPush(msg("m1", "carol", "alice"))
	// Group message while a direct conversation is open.
	store.ApplyPush(groupMsg("m2", "bob", "g1"))

	if got := len(store.Messages()); got != 0 {
		t.Fatalf("expected pushes for other conversations ignored, got %d messages", got)
	}
}

func TestStoreDirectMatchingBothDirections(t *testing.T) {
	store := NewStore("alice")
	fetch := &fakeFetcher{direct: map[string][]model.Message{}}
	if err := store.Select(context.Background(), DirectSelection{PeerID: "bob"}, fetch); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	store.ApplyPush(msg("in", "bob", "alice"))
	store.AppendOwn(msg("out", "alice", "bob"))

	if got := len(store.Messages()); got != 2 {
		t.Fatalf("expected both directions to match the selection, got %d", got)
	}
}

func TestStoreReselectEqualsFreshFetch(t *testing.T) {
	history := map[string][]model.Message{
		"bob":   {msg("b1", "bob", "alice")},
		"carol": {msg("c1", "carol", "alice"), msg("c2", "alice", "carol")},
	}
	fetch := &fakeFetcher{direct: history}
	store := NewStore("alice")
	ctx := context.Background()

	if err := store.Select(ctx, DirectSelection{PeerID: "bob"}, fetch); err != nil {
		t.Fatalf("Select bob: %v", err)
	}
	if err := store.Select(ctx, DirectSelection{PeerID: "carol"}, fetch); err != nil {
		t.Fatalf("Select carol: %v", err)
	}
	if err := store.Select(ctx, DirectSelection{PeerID: "bob"}, fetch); err != nil {
		t.Fatalf("Reselect bob: %v", err)
	}

	msgs := store.Messages()
	if len(msgs) != 1 || msgs[0].ID != "b1" {
		t.Fatalf("reselect must equal a fresh fetch, got %v", msgs)
	}
}

func TestStoreGroupSelection(t *testing.T) {
	fetch := &fakeFetcher{group: map[string][]model.Message{
		"g1": {groupMsg("g1m1", "bob", "g1")},
	}}
	store := NewStore("alice")
	if err := store.Select(context.Background(), GroupSelection{GroupID: "g1"}, fetch); err != nil {
		t.Fatalf("Select group: %v", err)
	}

	store.ApplyPush(groupMsg("g1m2", "carol", "g1"))
	store.ApplyPush(groupMsg("g2m1", "carol", "g2"))
	// Own group message arrives only via the push path for the sender's other
	// devices; the selected device already appended it from the send response.
	own := groupMsg("g1m3", "alice", "g1")
	store.AppendOwn(own)
	store.ApplyPush(own)

	msgs := store.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages (history + peer push + own), got %d", len(msgs))
	}
	for _, m := range msgs {
		if *m.GroupID != "g1" {
			t.Errorf("message %s belongs to group %s, selection is g1", m.ID, *m.GroupID)
		}
	}
}

func TestStoreOnlineSnapshotReplaces(t *testing.T) {
	store := NewStore("alice")

	store.SetOnline([]string{"bob", "carol"})
	if !store.IsOnline("bob") || !store.IsOnline("carol") {
		t.Error("first snapshot not applied")
	}

	store.SetOnline([]string{"carol"})
	if store.IsOnline("bob") {
		t.Error("snapshot must replace, not merge: bob is offline now")
	}
	if got := store.OnlineIDs(); len(got) != 1 || got[0] != "carol" {
		t.Errorf("OnlineIDs = %v, want [carol]", got)
	}
}

func TestStoreDeselectClearsMessages(t *testing.T) {
	fetch := &fakeFetcher{direct: map[string][]model.Message{
		"bob": {msg("b1", "bob", "alice")},
	}}
	store := NewStore("alice")
	if err := store.Select(context.Background(), DirectSelection{PeerID: "bob"}, fetch); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	store.Deselect()
	if store.Selected() != nil {
		t.Error("selection should be cleared")
	}
	if len(store.Messages()) != 0 {
		t.Error("messages should be discarded on deselect")
	}
	// Pushes with no open conversation are dropped.
	store.ApplyPush(msg("m9", "bob", "alice"))
	if len(store.Messages()) != 0 {
		t.Error("push with no selection must be ignored")
	}
}
