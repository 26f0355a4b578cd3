package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/sightcare/netra/internal/audit/domain"
	"github.com/sightcare/netra/internal/auth/domain"
	"github.com/sightcare/netra/internal/auth/password"
	"github.com/sightcare/netra/internal/clock"
	"github.com/sightcare/netra/internal/config"
)

const sessionTokenBytes = 32

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	GenID  *snowflake.Node
	Repo   domain.Repository
	Audit  auditdomain.Service
}

type Service struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
	audit auditdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		cfg:   p.Config,
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
		audit: p.Audit,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return domain.LoginResponse{}, domain.ErrUserInactive
	}

	token, err := newToken()
	if err != nil {
		return domain.LoginResponse{}, err
	}

	now := s.clock.Now()
	ttl := time.Duration(s.cfg.SessionTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	session := domain.Session{
		ID:        s.genID.Generate(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.repo.InsertSession(ctx, s.db, &session); err != nil {
		return domain.LoginResponse{}, err
	}

	// Opportunistic cleanup; login is rare enough to carry it.
	if err := s.repo.DeleteExpiredSessions(ctx, s.db, now); err != nil {
		s.log.Warn("expired session cleanup failed", zap.Error(err))
	}

	if err := s.audit.Record(ctx, "auth.login", "user", user.ID.String(), map[string]any{
		"email": user.Email,
	}); err != nil {
		s.log.Warn("audit write failed", zap.String("action", "auth.login"), zap.Error(err))
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	return domain.LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      *user,
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	if err := s.repo.DeleteSession(ctx, s.db, token); err != nil {
		return err
	}
	if err := s.audit.Record(ctx, "auth.logout", "session", "", nil); err != nil {
		s.log.Warn("audit write failed", zap.String("action", "auth.logout"), zap.Error(err))
	}
	return nil
}

func (s *Service) ValidateSession(ctx context.Context, token string) (domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return domain.User{}, domain.ErrSessionExpired
	}

	session, err := s.repo.FindSessionByToken(ctx, s.db, token)
	if err != nil {
		return domain.User{}, err
	}
	if session == nil || session.ExpiresAt.Before(s.clock.Now()) {
		return domain.User{}, domain.ErrSessionExpired
	}

	user, err := s.repo.FindUserByID(ctx, s.db, session.UserID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil || !user.IsActive {
		return domain.User{}, domain.ErrUserInactive
	}
	return *user, nil
}

func newToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
