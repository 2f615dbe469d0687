// Package auth carries the authenticated user identity through the request
// context. The engine requires a user before any read or write; callers that
// fail to authenticate get a domain.AuthError.
package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/ruifsilva/budgetflow-backend/internal/domain"
)

type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// CurrentUserID retrieves the authenticated user's ID from the context.
// Returns a *domain.AuthError when no authenticated session is present.
func CurrentUserID(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, &domain.AuthError{Reason: "no authenticated user in context"}
	}
	return userID, nil
}
