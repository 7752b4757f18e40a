// Package service holds the message ingest pipeline: validate an outgoing
// message, persist it, then hand it to the delivery router. The order is
// fixed so a client is never notified about a message it could fail to fetch.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PriyaG26/Chat-app/internal/logger"
	"github.com/PriyaG26/Chat-app/internal/model"
	"github.com/PriyaG26/Chat-app/internal/presence"
	"github.com/PriyaG26/Chat-app/internal/repository"
)

// Domain errors, mapped to HTTP statuses by the handlers.
var (
	ErrEmptyMessage  = errors.New("message must contain text or an image")
	ErrGroupNotFound = errors.New("group not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrNotMember     = errors.New("not a member of this group")
)

// MessageStore persists messages. Implemented by repository.MessageRepository.
type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
}

// UserStore resolves sender/receiver identities. Implemented by
// repository.UserRepository.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// GroupStore resolves target groups and current membership. Implemented by
// repository.GroupRepository.
type GroupStore interface {
	GetByID(ctx context.Context, id string) (*model.Group, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// MessageRouter pushes a persisted message to connected recipients.
// Implemented by ws.Router.
type MessageRouter interface {
	Route(ctx context.Context, msg *model.Message) []presence.Handle
}

// SendInput is the caller-supplied message content.
type SendInput struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
	VoiceURL string `json:"voice_url"`
}

func (in SendInput) empty() bool {
	return strings.TrimSpace(in.Text) == "" && in.ImageURL == ""
}

// Ingest validates, persists, enriches and routes outgoing messages.
type Ingest struct {
	messages MessageStore
	users    UserStore
	groups   GroupStore
	router   MessageRouter
}

func NewIngest(messages MessageStore, users UserStore, groups GroupStore, router MessageRouter) *Ingest {
	return &Ingest{messages: messages, users: users, groups: groups, router: router}
}

// SendDirect persists a direct message and routes it to the receiver's and
// sender's live connections. The returned message carries resolved sender and
// receiver identities so the caller can render it without another fetch.
func (s *Ingest) SendDirect(ctx context.Context, senderID, receiverID string, in SendInput) (*model.Message, error) {
	defer logger.DeferLogDuration("ingest.SendDirect", time.Now())()
	if in.empty() {
		return nil, ErrEmptyMessage
	}
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("ingest resolve sender: %w", err)
	}
	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ingest resolve receiver: %w", err)
	}

	m := s.newMessage(senderID, in)
	m.ReceiverID = &receiver.ID
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("ingest persist: %w", err)
	}

	senderPub := sender.ToPublic()
	receiverPub := receiver.ToPublic()
	m.Sender = &senderPub
	m.Receiver = &receiverPub

	s.router.Route(ctx, m)
	return m, nil
}

// SendGroup persists a group message and routes it to every currently
// connected member, the sender included. Membership is checked against the
// store at send time, so revoked members are rejected even for groups they
// once belonged to.
func (s *Ingest) SendGroup(ctx context.Context, senderID, groupID string, in SendInput) (*model.Message, error) {
	defer logger.DeferLogDuration("ingest.SendGroup", time.Now())()
	if in.empty() {
		return nil, ErrEmptyMessage
	}
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("ingest resolve group: %w", err)
	}
	isMember, err := s.groups.IsMember(ctx, groupID, senderID)
	if err != nil {
		return nil, fmt.Errorf("ingest check membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotMember
	}
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("ingest resolve sender: %w", err)
	}

	m := s.newMessage(senderID, in)
	m.GroupID = &groupID
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("ingest persist: %w", err)
	}

	senderPub := sender.ToPublic()
	m.Sender = &senderPub

	s.router.Route(ctx, m)
	return m, nil
}

func (s *Ingest) newMessage(senderID string, in SendInput) *model.Message {
	return &model.Message{
		ID:        uuid.New().String(),
		SenderID:  senderID,
		Text:      in.Text,
		ImageURL:  in.ImageURL,
		VoiceURL:  in.VoiceURL,
		CreatedAt: time.Now().UTC(),
	}
}
