package model

import "time"

// Group is a named conversation with a fixed member set and one admin.
// Invariant: the admin is always a member; member ids are unique.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AdminID   string    `json:"admin_id"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Members is populated on enriched reads, ordered by join time.
	Members []UserPublic `json:"members,omitempty"`
}

type GroupMember struct {
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}
