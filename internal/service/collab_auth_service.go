package service

import (
	"context"
	"time"

	"sheetroom-be/internal/config"
	"sheetroom-be/internal/dto"
	"sheetroom-be/internal/pkg/logger"
	"sheetroom-be/internal/pkg/serverutils"
	"sheetroom-be/internal/repository/memory"
	"sheetroom-be/pkg/rooms"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ICollabAuthService interface {
	Authorize(ctx context.Context, req *dto.CollabAuthRequest) (*dto.CollabAuthResponse, error)
	VerifyToken(tokenString string) (*memory.Grant, error)
}

type collabAuthService struct {
	cfg    config.CollabConfig
	grants *memory.GrantCache
	logger logger.ILogger
}

func NewCollabAuthService(cfg config.CollabConfig, grants *memory.GrantCache, log logger.ILogger) ICollabAuthService {
	return &collabAuthService{
		cfg:    cfg,
		grants: grants,
		logger: log,
	}
}

// Authorize mints a room-access token. Development-mode policy: every user
// gets full access to every workbook wildcard. Real per-user checks belong
// here when this stops being a stand-in.
func (s *collabAuthService) Authorize(ctx context.Context, req *dto.CollabAuthRequest) (*dto.CollabAuthResponse, error) {
	if req.Room != "" && !rooms.IsValid(req.Room) {
		return nil, serverutils.NewBadRequestError("invalid room id")
	}

	patterns := []string{rooms.AllWorkbooksWildcard()}
	if req.Room != "" {
		parsed, err := rooms.Parse(req.Room)
		if err != nil {
			return nil, serverutils.NewBadRequestError("invalid room id")
		}
		patterns = append(patterns, rooms.WorkbookWildcard(parsed.WorkbookID))
	}

	tokenId := uuid.New().String()
	now := time.Now()
	claims := jwt.MapClaims{
		"jti":      tokenId,
		"sub":      req.UserId,
		"tenant":   req.TenantId,
		"patterns": patterns,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.TokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.cfg.TokenSecret))
	if err != nil {
		return nil, err
	}

	s.grants.Save(tokenId, &memory.Grant{
		UserId:   req.UserId,
		Patterns: patterns,
		IssuedAt: now,
	})

	s.logger.Info("CollabAuth", "Token issued", map[string]interface{}{
		"user_id":  req.UserId,
		"patterns": patterns,
	})

	return &dto.CollabAuthResponse{
		Status: 200,
		Body: dto.CollabAuthGrant{
			Token:    signedToken,
			UserId:   req.UserId,
			Patterns: patterns,
		},
	}, nil
}

// VerifyToken checks the signature and returns the cached grant. A valid
// signature with a missing cache entry still passes: the cache only speeds
// up lookups, the token itself is the authority.
func (s *collabAuthService) VerifyToken(tokenString string) (*memory.Grant, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.TokenSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, serverutils.NewBadRequestError("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, serverutils.NewBadRequestError("invalid token")
	}

	tokenId, _ := claims["jti"].(string)
	if grant, found := s.grants.Get(tokenId); found {
		return grant, nil
	}

	userId, _ := claims["sub"].(string)
	patterns := make([]string, 0)
	if raw, ok := claims["patterns"].([]interface{}); ok {
		for _, p := range raw {
			if pattern, ok := p.(string); ok {
				patterns = append(patterns, pattern)
			}
		}
	}
	return &memory.Grant{UserId: userId, Patterns: patterns}, nil
}
