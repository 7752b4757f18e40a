package middleware

import "context"

type contextKey string

const UserIDKey contextKey = "user_id"

const SessionIDKey contextKey = "session_id"

// GetUserID returns the verified user id set by SessionAuth, or "".
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(UserIDKey).(string)
	return v
}

func GetSessionID(ctx context.Context) string {
	v, _ := ctx.Value(SessionIDKey).(string)
	return v
}
