package presence

import (
	"reflect"
	"testing"
)

type fakeHandle struct {
	userID string
	connID string
	events []string
}

func (f *fakeHandle) UserID() string { return f.userID }
func (f *fakeHandle) ConnID() string { return f.connID }
func (f *fakeHandle) Deliver(event string, payload any) bool {
	f.events = append(f.events, event)
	return true
}

func TestRegistryOnlineLifecycle(t *testing.T) {
	reg := NewRegistry()

	if reg.Online("alice") {
		t.Error("alice should be offline before any registration")
	}

	phone := &fakeHandle{userID: "alice", connID: "c1"}
	laptop := &fakeHandle{userID: "alice", connID: "c2"}
	reg.Register(phone)
	reg.Register(laptop)

	if !reg.Online("alice") {
		t.Error("alice should be online with two connections")
	}
	if got := len(reg.Lookup("alice")); got != 2 {
		t.Fatalf("expected 2 handles for alice, got %d", got)
	}

	if last := reg.Unregister(phone); last {
		t.Error("dropping one of two connections must not report last")
	}
	if !reg.Online("alice") {
		t.Error("alice should stay online while the laptop is connected")
	}

	if last := reg.Unregister(laptop); !last {
		t.Error("dropping the final connection must report last")
	}
	if reg.Online("alice") {
		t.Error("alice should be offline after the final disconnect")
	}
	if got := len(reg.Lookup("alice")); got != 0 {
		t.Errorf("expected no handles after final disconnect, got %d", got)
	}
}

func TestRegistryUnregisterUnknown(t *testing.T) {
	reg := NewRegistry()
	h := &fakeHandle{userID: "bob", connID: "c1"}

	if last := reg.Unregister(h); last {
		t.Error("unregistering an unknown handle must not report last")
	}

	reg.Register(h)
	reg.Unregister(h)
	if last := reg.Unregister(h); last {
		t.Error("second unregister of the same handle must not report last")
	}
}

func TestRegistryOnlineIDsSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeHandle{userID: "carol", connID: "c1"})
	reg.Register(&fakeHandle{userID: "alice", connID: "c2"})
	reg.Register(&fakeHandle{userID: "bob", connID: "c3"})
	// Second device must not duplicate the id in the snapshot.
	reg.Register(&fakeHandle{userID: "alice", connID: "c4"})

	want := []string{"alice", "bob", "carol"}
	if got := reg.OnlineIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("OnlineIDs = %v, want %v", got, want)
	}
}

func TestRegistryLen(t *testing.T) {
	reg := NewRegistry()
	a := &fakeHandle{userID: "alice", connID: "c1"}
	b := &fakeHandle{userID: "alice", connID: "c2"}
	c := &fakeHandle{userID: "bob", connID: "c3"}

	reg.Register(a)
	reg.Register(b)
	reg.Register(c)
	if got := reg.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}

	reg.Unregister(b)
	if got := reg.Len(); got != 2 {
		t.Fatalf("Len = %d after one disconnect, want 2", got)
	}
	if got := len(reg.All()); got != 2 {
		t.Fatalf("All returned %d handles, want 2", got)
	}
}
