package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketadmin/internal/domain"
	"marketadmin/internal/observability"
	"marketadmin/internal/pkg/apperror"
	"marketadmin/internal/policy"
	"marketadmin/internal/repository"
)

// Service issues and rotates admin sessions.
type Service struct {
	accounts           AccountRepository
	tokens             RefreshTokenRepository
	jwt                jwtService
	metrics            *observability.Metrics
	log                *zap.Logger
	refreshTokenPepper string
	refreshTTL         time.Duration
	now                func() time.Time
}

type Session struct {
	Account      *domain.Account
	AccessToken  string
	RefreshToken string
}

func NewService(
	accounts AccountRepository,
	tokens RefreshTokenRepository,
	jwt jwtService,
	metrics *observability.Metrics,
	log *zap.Logger,
	refreshTokenPepper string,
	refreshTTL time.Duration,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		accounts:           accounts,
		tokens:             tokens,
		jwt:                jwt,
		metrics:            metrics,
		log:                log,
		refreshTokenPepper: refreshTokenPepper,
		refreshTTL:         refreshTTL,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// Login authenticates by username or email. Only active admin-tier accounts
// may open a session.
func (s *Service) Login(ctx context.Context, req LoginRequest, userAgent, ip string) (*Session, error) {
	acc, err := s.accounts.GetByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.Login("invalid")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.Login("invalid")
		return nil, ErrInvalidCredentials
	}
	if !acc.IsActive {
		s.metrics.Login("disabled")
		return nil, ErrAccountDisabled
	}
	if !acc.Role().IsAdminTier() {
		s.metrics.Login("forbidden")
		return nil, ErrAdminRequired
	}

	now := s.now()
	access, err := s.jwt.GenerateToken(acc.ID, string(acc.Role()))
	if err != nil {
		return nil, err
	}
	raw, hash, err := generateOpaqueRefreshToken(s.refreshTokenPepper)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, &domain.RefreshToken{
		AccountID: acc.ID,
		TokenHash: hash,
		JTI:       uuid.NewString(),
		FamilyID:  uuid.NewString(),
		ExpiresAt: now.Add(s.refreshTTL),
		UserAgent: nullableString(userAgent),
		IP:        nullableString(ip),
	}); err != nil {
		return nil, err
	}

	if err := s.accounts.TouchLastLogin(ctx, acc.ID, now); err != nil {
		s.log.Warn("touch last login failed", zap.Int64("account_id", acc.ID), zap.Error(err))
	} else {
		acc.LastLogin = &now
	}

	s.metrics.Login("success")
	s.log.Info("audit",
		zap.String("event", "login"),
		zap.Int64("actor_id", acc.ID),
		zap.String("actor_role", string(acc.Role())),
		zap.String("ip", ip),
	)
	return &Session{Account: acc, AccessToken: access, RefreshToken: raw}, nil
}

// Refresh consumes a refresh token and issues a new pair in the same family.
// Presenting a consumed token revokes the whole family.
func (s *Service) Refresh(ctx context.Context, refreshRaw, userAgent, ip string) (*Session, error) {
	refreshRaw = strings.TrimSpace(refreshRaw)
	if refreshRaw == "" {
		return nil, ErrMissingRefreshToken
	}

	now := s.now()
	hash := hashTokenWithPepper(refreshRaw, s.refreshTokenPepper)
	var (
		session *Session
		// outcome is returned after commit so revocations persist.
		outcome error
	)

	err := s.tokens.Transaction(ctx, func(repo *repository.RefreshTokenRepository) error {
		current, err := repo.GetByHashForUpdate(ctx, hash)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcome = ErrInvalidRefreshToken
				return nil
			}
			return err
		}
		if !current.ExpiresAt.After(now) {
			outcome = ErrInvalidRefreshToken
			return nil
		}
		if current.UsedAt != nil || current.RevokedAt != nil {
			outcome = ErrRefreshTokenReused
			return repo.MarkReuse(ctx, current, now)
		}

		acc, err := repository.NewAccountRepository(repo.DB()).GetByID(ctx, current.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcome = ErrInvalidRefreshToken
				return nil
			}
			return err
		}
		if !acc.IsActive || !acc.Role().IsAdminTier() {
			outcome = ErrAdminRequired
			if !acc.IsActive {
				outcome = ErrAccountDisabled
			}
			return repo.RevokeFamily(ctx, current.FamilyID, now)
		}

		access, err := s.jwt.GenerateToken(acc.ID, string(acc.Role()))
		if err != nil {
			return err
		}
		newRaw, newHash, err := generateOpaqueRefreshToken(s.refreshTokenPepper)
		if err != nil {
			return err
		}
		if err := repo.MarkUsed(ctx, current.ID, now); err != nil {
			return err
		}
		rotatedFrom := current.ID
		if err := repo.Create(ctx, &domain.RefreshToken{
			AccountID:   acc.ID,
			TokenHash:   newHash,
			JTI:         uuid.NewString(),
			FamilyID:    current.FamilyID,
			RotatedFrom: &rotatedFrom,
			ExpiresAt:   now.Add(s.refreshTTL),
			UserAgent:   nullableString(userAgent),
			IP:          nullableString(ip),
		}); err != nil {
			return err
		}
		session = &Session{Account: acc, AccessToken: access, RefreshToken: newRaw}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		if errors.Is(outcome, ErrRefreshTokenReused) {
			s.log.Warn("refresh token reuse detected", zap.String("ip", ip))
		}
		return nil, outcome
	}
	return session, nil
}

// Logout revokes the presented refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, refreshRaw string) error {
	refreshRaw = strings.TrimSpace(refreshRaw)
	if refreshRaw == "" {
		return nil
	}
	token, err := s.tokens.GetByHash(ctx, hashTokenWithPepper(refreshRaw, s.refreshTokenPepper))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.tokens.Revoke(ctx, token.ID, s.now())
}

func (s *Service) Me(ctx context.Context, actor policy.Actor) (*domain.Account, error) {
	if !actor.Authenticated() {
		return nil, apperror.Unauthenticated("Authentication required")
	}
	acc, err := s.accounts.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, apperror.FromStore(err, "account")
	}
	return acc, nil
}

// UpdateMe changes the actor's own contact details. Role changes are refused.
func (s *Service) UpdateMe(ctx context.Context, actor policy.Actor, req UpdateMeRequest) (*domain.Account, error) {
	if !actor.Authenticated() {
		return nil, apperror.Unauthenticated("Authentication required")
	}
	if req.Role != nil {
		return nil, ErrRoleChangeViaMe
	}

	u := repository.AccountUpdate{Account: map[string]any{}, Profile: map[string]any{}}
	if req.FirstName != nil {
		u.Account["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		u.Account["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		u.Account["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.PhoneNumber != nil {
		u.Profile["phone_number"] = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.JobTitle != nil {
		u.Profile["job_title"] = strings.TrimSpace(*req.JobTitle)
	}
	if req.Organisation != nil {
		u.Profile["organisation"] = strings.TrimSpace(*req.Organisation)
	}

	acc, err := s.accounts.Update(ctx, actor.ID, u)
	if err != nil {
		return nil, apperror.FromStore(err, "account")
	}
	return acc, nil
}

func generateOpaqueRefreshToken(pepper string) (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	hash = hashTokenWithPepper(raw, pepper)
	return raw, hash, nil
}

func hashTokenWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}

func nullableString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
