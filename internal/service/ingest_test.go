package service

import (
	"context"
	"errors"
	"testing"

	"github.com/PriyaG26/Chat-app/internal/model"
	"github.com/PriyaG26/Chat-app/internal/presence"
	"github.com/PriyaG26/Chat-app/internal/repository"
)

type fakeMessages struct {
	created []*model.Message
	err     error
}

func (f *fakeMessages) Create(ctx context.Context, m *model.Message) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, m)
	return nil
}

type fakeUsers struct {
	users map[string]*model.User
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type fakeGroups struct {
	groups  map[string]*model.Group
	members map[string]map[string]bool
}

func (f *fakeGroups) GetByID(ctx context.Context, id string) (*model.Group, error) {
	if g, ok := f.groups[id]; ok {
		return g, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeGroups) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	return f.members[groupID][userID], nil
}

type fakeRouter struct {
	routed []*model.Message
}

func (f *fakeRouter) Route(ctx context.Context, msg *model.Message) []presence.Handle {
	f.routed = append(f.routed, msg)
	return nil
}

func newTestIngest() (*Ingest, *fakeMessages, *fakeRouter) {
	msgs := &fakeMessages{}
	router := &fakeRouter{}
	users := &fakeUsers{users: map[string]*model.User{
		"alice": {ID: "alice", FullName: "Alice A", Email: "alice@example.com"},
		"bob":   {ID: "bob", FullName: "Bob B", Email: "bob@example.com"},
	}}
	groups := &fakeGroups{
		groups:  map[string]*model.Group{"g1": {ID: "g1", Name: "team", AdminID: "alice"}},
		members: map[string]map[string]bool{"g1": {"alice": true, "bob": true}},
	}
	return NewIngest(msgs, users, groups, router), msgs, router
}

func TestSendDirectPersistsThenRoutes(t *testing.T) {
	ingest, msgs, router := newTestIngest()

	m, err := ingest.SendDirect(context.Background(), "alice", "bob", SendInput{Text: "hello"})
	if err != nil {
		t.Fatalf("SendDirect failed: %v", err)
	}

	if len(msgs.created) != 1 {
		t.Fatalf("expected 1 persisted message, got %d", len(msgs.created))
	}
	if len(router.routed) != 1 {
		t.Fatalf("expected 1 routed message, got %d", len(router.routed))
	}
	if m.ID == "" || m.CreatedAt.IsZero() {
		t.Error("message must carry a server-assigned id and timestamp")
	}
	if m.ReceiverID == nil || *m.ReceiverID != "bob" {
		t.Error("receiver id not set")
	}
	if m.Sender == nil || m.Sender.FullName != "Alice A" {
		t.Error("sender identity not attached")
	}
	if m.Receiver == nil || m.Receiver.FullName != "Bob B" {
		t.Error("receiver identity not attached")
	}
}

func TestSendDirectEmptyContent(t *testing.T) {
	ingest, msgs, router := newTestIngest()

	for _, in := range []SendInput{{}, {Text: "   "}} {
		if _, err := ingest.SendDirect(context.Background(), "alice", "bob", in); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("SendDirect(%+v) error = %v, want ErrEmptyMessage", in, err)
		}
	}
	if len(msgs.created) != 0 {
		t.Error("empty message must not be persisted")
	}
	if len(router.routed) != 0 {
		t.Error("empty message must not be routed")
	}
}

func TestSendDirectImageOnly(t *testing.T) {
	ingest, _, _ := newTestIngest()

	m, err := ingest.SendDirect(context.Background(), "alice", "bob", SendInput{ImageURL: "/api/files/x.png"})
	if err != nil {
		t.Fatalf("image-only message rejected: %v", err)
	}
	if m.Text != "" || m.ImageURL == "" {
		t.Error("image-only message should keep its attachment")
	}
}

func TestSendDirectUnknownReceiver(t *testing.T) {
	ingest, msgs, _ := newTestIngest()

	if _, err := ingest.SendDirect(context.Background(), "alice", "nobody", SendInput{Text: "hi"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
	if len(msgs.created) != 0 {
		t.Error("message to unknown receiver must not be persisted")
	}
}

func TestSendDirectStoreFailureDoesNotRoute(t *testing.T) {
	ingest, msgs, router := newTestIngest()
	msgs.err = errors.New("db down")

	if _, err := ingest.SendDirect(context.Background(), "alice", "bob", SendInput{Text: "hi"}); err == nil {
		t.Fatal("expected persist error")
	}
	if len(router.routed) != 0 {
		t.Error("a message that failed to persist must never be routed")
	}
}

func TestSendGroupChecksExistenceAndMembership(t *testing.T) {
	ingest, msgs, router := newTestIngest()

	if _, err := ingest.SendGroup(context.Background(), "alice", "missing", SendInput{Text: "hi"}); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("unknown group error = %v, want ErrGroupNotFound", err)
	}

	// eve exists in no membership set.
	if _, err := ingest.SendGroup(context.Background(), "eve", "g1", SendInput{Text: "hi"}); !errors.Is(err, ErrNotMember) {
		t.Errorf("non-member error = %v, want ErrNotMember", err)
	}

	if len(msgs.created) != 0 || len(router.routed) != 0 {
		t.Error("rejected group sends must neither persist nor route")
	}
}

func TestSendGroupSuccess(t *testing.T) {
	ingest, msgs, router := newTestIngest()

	m, err := ingest.SendGroup(context.Background(), "bob", "g1", SendInput{Text: "standup?"})
	if err != nil {
		t.Fatalf("SendGroup failed: %v", err)
	}
	if m.GroupID == nil || *m.GroupID != "g1" {
		t.Error("group id not set")
	}
	if m.Sender == nil || m.Sender.ID != "bob" {
		t.Error("sender identity not attached")
	}
	if len(msgs.created) != 1 || len(router.routed) != 1 {
		t.Errorf("persisted=%d routed=%d, want 1/1", len(msgs.created), len(router.routed))
	}
}
