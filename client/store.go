// Package client is the Go client for the chat API: a signed HTTP client, a
// WebSocket listener, and an in-memory conversation store mirroring what a
// connected UI shows.
package client

import (
	"context"
	"sort"
	"sync"

	"github.com/PriyaG26/Chat-app/internal/model"
)

// Selection identifies the open conversation.
type Selection interface{ isSelection() }

// DirectSelection is an open one-to-one conversation with a peer.
type DirectSelection struct {
	PeerID string
}

// GroupSelection is an open group conversation.
type GroupSelection struct {
	GroupID string
}

func (DirectSelection) isSelection() {}
func (GroupSelection) isSelection()  {}

// HistoryFetcher loads a conversation's history. Implemented by *Client.
type HistoryFetcher interface {
	DirectHistory(ctx context.Context, peerID string) ([]model.Message, error)
	GroupHistory(ctx context.Context, groupID string) ([]model.Message, error)
}

// Store holds the client-side conversation state: sidebar users and groups,
// the selected conversation's messages, and the online-id set. All methods are
// safe for concurrent use; HTTP results and WS pushes arrive on different
// goroutines.
type Store struct {
	mu sync.Mutex

	selfID    string
	selection Selection
	messages  []model.Message
	users     []model.UserPublic
	groups    []model.Group
	online    map[string]bool

	loadingMessages bool
	loadingUsers    bool
	loadingGroups   bool
}

func NewStore(selfID string) *Store {
	return &Store{selfID: selfID, online: map[string]bool{}}
}

// Select switches the open conversation. The previous conversation's messages
// are discarded immediately and the new history is fetched before it becomes
// visible, so a stale message list is never shown against a new selection.
func (s *Store) Select(ctx context.Context, sel Selection, fetch HistoryFetcher) error {
	s.mu.Lock()
	s.selection = sel
	s.messages = nil
	s.loadingMessages = true
	s.mu.Unlock()

	var history []model.Message
	var err error
	switch v := sel.(type) {
	case DirectSelection:
		history, err = fetch.DirectHistory(ctx, v.PeerID)
	case GroupSelection:
		history, err = fetch.GroupHistory(ctx, v.GroupID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadingMessages = false
	if err != nil {
		return err
	}
	// The user may have clicked elsewhere while the fetch was in flight.
	if s.selection != sel {
		return nil
	}
	s.messages = history
	return nil
}

// Deselect closes the open conversation.
func (s *Store) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
	s.messages = nil
}

// ApplyPush folds a pushed message into the store. Messages for conversations
// other than the selected one are ignored. The echo of the local user's own
// message to the selected conversation is dropped: the HTTP send response has
// already appended it.
func (s *Store) ApplyPush(m model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil || !s.matchesSelection(&m) {
		return
	}
	if m.SenderID == s.selfID {
		return
	}
	s.messages = append(s.messages, m)
}

// AppendOwn records the local user's sent message as returned by the API, if
// it belongs to the selected conversation.
func (s *Store) AppendOwn(m model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil || !s.matchesSelection(&m) {
		return
	}
	s.messages = append(s.messages, m)
}

// matchesSelection reports whether m belongs to the open conversation.
// Callers hold s.mu.
func (s *Store) matchesSelection(m *model.Message) bool {
	switch sel := s.selection.(type) {
	case DirectSelection:
		if m.IsGroup() {
			return false
		}
		recv := ""
		if m.ReceiverID != nil {
			recv = *m.ReceiverID
		}
		// Either direction between the local identity and the selected peer.
		return (m.SenderID == sel.PeerID && recv == s.selfID) ||
			(m.SenderID == s.selfID && recv == sel.PeerID)
	case GroupSelection:
		return m.GroupID != nil && *m.GroupID == sel.GroupID
	}
	return false
}

// SetOnline replaces the online-id set with a fresh snapshot.
func (s *Store) SetOnline(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.online[id] = true
	}
}

// IsOnline reports whether a user was online in the latest snapshot.
func (s *Store) IsOnline(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online[userID]
}

// OnlineIDs returns the latest snapshot, sorted.
func (s *Store) OnlineIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.online))
	for id := range s.online {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) SetUsers(users []model.UserPublic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
	s.loadingUsers = false
}

func (s *Store) SetGroups(groups []model.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = groups
	s.loadingGroups = false
}

// Messages returns a copy of the selected conversation's messages, oldest
// first.
func (s *Store) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Users() []model.UserPublic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.UserPublic, len(s.users))
	copy(out, s.users)
	return out
}

func (s *Store) Groups() []model.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Group, len(s.groups))
	copy(out, s.groups)
	return out
}

// Selected returns the open conversation, or nil.
func (s *Store) Selected() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Loading reports whether the selected conversation's history fetch is in
// flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingMessages
}
