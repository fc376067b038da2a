package utils

import (
	"context"

	"counsel-dispatch/pkg/contextkeys"
	apperrors "counsel-dispatch/pkg/errors"
)

func GetActorIDFromCtx(ctx context.Context) (string, error) {
	actorID, ok := ctx.Value(contextkeys.ActorIDKey).(string)
	if !ok || actorID == "" {
		return "", apperrors.ErrActorNotFoundInContext
	}
	return actorID, nil
}

func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, contextkeys.ActorIDKey, actorID)
}
