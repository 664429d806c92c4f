package ctxutil

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/tickethub-backend/internal/domain/user"
)

type requestDataKey struct{}

// RequestData is the authenticated caller, attached by the auth middleware.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	Email       string
	Role        user.Role
}

func (rd *RequestData) IsAdmin() bool {
	return rd != nil && rd.Role == user.RoleAdmin
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
