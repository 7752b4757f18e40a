package model

import "time"

type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserPublic is the identity shape attached to enriched reads (message senders,
// group members, the sidebar). It never carries credentials.
type UserPublic struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	AvatarURL  string    `json:"avatar_url"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:         u.ID,
		FullName:   u.FullName,
		AvatarURL:  u.AvatarURL,
		LastSeenAt: u.LastSeenAt,
	}
}
