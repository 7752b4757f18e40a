package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PriyaG26/Chat-app/internal/logger"
	"github.com/PriyaG26/Chat-app/internal/model"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	defer logger.DeferLogDuration("msg.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, sender_id, receiver_id, group_id, text, image_url, voice_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.SenderID, m.ReceiverID, m.GroupID, m.Text, m.ImageURL, m.VoiceURL, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("msgRepo.Create: %w", err)
	}
	return nil
}

const messageSelect = `
	SELECT m.id, m.sender_id, m.receiver_id, m.group_id,
	       COALESCE(m.text,''), COALESCE(m.image_url,''), COALESCE(m.voice_url,''), m.created_at,
	       s.id, s.full_name, s.avatar_url, s.last_seen_at
	FROM messages m
	JOIN users s ON s.id = m.sender_id`

func scanMessage(rows pgx.Rows) (model.Message, error) {
	var m model.Message
	sender := &model.UserPublic{}
	err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.GroupID,
		&m.Text, &m.ImageURL, &m.VoiceURL, &m.CreatedAt,
		&sender.ID, &sender.FullName, &sender.AvatarURL, &sender.LastSeenAt)
	if err != nil {
		return m, err
	}
	m.Sender = sender
	return m, nil
}

// GetBetween returns the direct conversation between two users, oldest first,
// with sender and receiver identities resolved.
func (r *MessageRepository) GetBetween(ctx context.Context, idA, idB string) ([]model.Message, error) {
	defer logger.DeferLogDuration("msg.GetBetween", time.Now())()
	rows, err := r.pool.Query(ctx, messageSelect+`
		 JOIN users rcv ON rcv.id = m.receiver_id
		 WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		    OR (m.sender_id = $2 AND m.receiver_id = $1)
		 ORDER BY m.created_at`, idA, idB,
	)
	if err != nil {
		return nil, fmt.Errorf("msgRepo.GetBetween query: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0, 64)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("msgRepo.GetBetween scan: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("msgRepo.GetBetween rows: %w", err)
	}
	// Receiver identity: each row's receiver is one of the two participants.
	r.attachReceivers(ctx, messages)
	return messages, nil
}

// attachReceivers resolves receiver identities for direct messages. At most two
// distinct receivers appear, so two lookups cover the list.
func (r *MessageRepository) attachReceivers(ctx context.Context, messages []model.Message) {
	cache := make(map[string]*model.UserPublic, 2)
	for i := range messages {
		if messages[i].ReceiverID == nil {
			continue
		}
		id := *messages[i].ReceiverID
		if pub, ok := cache[id]; ok {
			messages[i].Receiver = pub
			continue
		}
		var u model.UserPublic
		err := r.pool.QueryRow(ctx,
			`SELECT id, full_name, avatar_url, last_seen_at FROM users WHERE id = $1`, id,
		).Scan(&u.ID, &u.FullName, &u.AvatarURL, &u.LastSeenAt)
		if err != nil {
			logger.Errorf("msgRepo.attachReceivers user=%s: %v", id, err)
			cache[id] = nil
			continue
		}
		cache[id] = &u
		messages[i].Receiver = &u
	}
}

// GetByGroup returns a group's messages, oldest first, senders resolved.
func (r *MessageRepository) GetByGroup(ctx context.Context, groupID string) ([]model.Message, error) {
	defer logger.DeferLogDuration("msg.GetByGroup", time.Now())()
	rows, err := r.pool.Query(ctx, messageSelect+`
		 WHERE m.group_id = $1
		 ORDER BY m.created_at`, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("msgRepo.GetByGroup query: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0, 64)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("msgRepo.GetByGroup scan: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("msgRepo.GetByGroup rows: %w", err)
	}
	return messages, nil
}
