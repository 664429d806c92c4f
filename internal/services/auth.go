package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/data/repos"
	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/pkg/ctxutil"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/platform/apierr"
)

// JWTClaims is what the identity provider puts in the bearer token. Only the
// subject is trusted for identity; role is always re-read from the database.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	IssueToken(user *types.User, ttl time.Duration) (string, error)
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	issuer       string
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	issuer string,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		issuer:       strings.TrimSpace(issuer),
	}
}

// IssueToken mints an HS256 token for user. The API never calls it; it backs
// the admin CLI and tests.
func (as *authService) IssueToken(user *types.User, ttl time.Duration) (string, error) {
	if user == nil || user.ID == uuid.Nil {
		return "", errors.New("user required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := JWTClaims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    as.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, apierr.Unauthorized("missing or invalid token")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if as.issuer != "" {
		opts = append(opts, jwt.WithIssuer(as.issuer))
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, opts...)
	if err != nil {
		as.log.Debug("Rejected bearer token", "error", err)
		return ctx, apierr.Unauthorized("invalid or expired token")
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.Unauthorized("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid subject in token")
	}

	user, err := as.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return ctx, fmt.Errorf("load token user: %w", err)
	}
	if user == nil {
		return ctx, apierr.Unauthorized("unknown user")
	}
	if !user.IsActive {
		return ctx, apierr.Forbidden("account is deactivated")
	}

	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}
