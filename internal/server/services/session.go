// Package services contains server-side business logic. SessionService runs
// the sign-in state machine on top of the key exchange, the session cache and
// the account repository, and rotates access tokens with theft detection.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/lock"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// KeyExchange is the slice of *keyexchange.Exchange the service uses.
type KeyExchange interface {
	Issue(ctx context.Context) (string, error)
	IsValid(ctx context.Context, publicKey string, ttl time.Duration) (bool, error)
	Fetch(ctx context.Context, publicKey string) (models.KeyPair, error)
	Consume(ctx context.Context, publicKey string) error
}

// Cipher encrypts and decrypts short strings. *cryptox.RSAEngine satisfies it.
type Cipher interface {
	Encrypt(plain, publicKey string) (string, error)
	Decrypt(ciphertext, privateKey string) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(password, hash string) bool
}

// TokenCodec is satisfied by *auth.Codec.
type TokenCodec interface {
	IssueAccessToken(subjectID string) (string, error)
	IssueRefreshToken(subjectID string) (string, error)
	ValidateRefreshToken(token string) (string, error)
	ParseAccessToken(token string) (string, error)
}

// Dependencies are the collaborators of SessionService. Metrics and Logger
// may be nil.
type Dependencies struct {
	Keys    KeyExchange
	Cipher  Cipher
	Hasher  PasswordHasher
	Tokens  TokenCodec
	Access  credentials.AccessStore
	Refresh credentials.RefreshStore
	Repos   repomanager.RepositoryManager
	Locker  lock.Locker
	Metrics *metrics.Metrics
	Logger  logging.Logger
}

type SignInRequest struct {
	RSA      string
	Username string
	Password string
}

type ChangePasswordRequest struct {
	RSA            string
	OriginPassword string
	Password       string
}

type UpdateInfoRequest struct {
	RSA      string
	Nickname string
	Gender   models.Gender
}

type SessionService struct {
	keys    KeyExchange
	cipher  Cipher
	hasher  PasswordHasher
	tokens  TokenCodec
	access  credentials.AccessStore
	refresh credentials.RefreshStore
	repos   repomanager.RepositoryManager
	locker  lock.Locker
	metrics *metrics.Metrics
	logger  logging.Logger

	accessTTL  time.Duration
	rsaTTL     time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewSessionService(d Dependencies, cfg *config.Config) *SessionService {
	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	locker := d.Locker
	if locker == nil {
		locker = lock.NewLocal()
	}

	return &SessionService{
		keys:       d.Keys,
		cipher:     d.Cipher,
		hasher:     d.Hasher,
		tokens:     d.Tokens,
		access:     d.Access,
		refresh:    d.Refresh,
		repos:      d.Repos,
		locker:     locker,
		metrics:    d.Metrics,
		logger:     logger.With("module", "session"),
		accessTTL:  cfg.AccessTokenValidityDuration,
		rsaTTL:     cfg.RSATTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for stamps and the idle check.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// PublicKey issues a fresh key pair and returns its public half.
func (s *SessionService) PublicKey(ctx context.Context) (string, error) {
	pub, err := s.keys.Issue(ctx)
	if err != nil {
		return "", err
	}
	s.metrics.KeyPairIssued()
	return pub, nil
}

// Encrypt encrypts plain under publicKey. It is a diagnostic helper for
// clients that cannot do RSA themselves.
func (s *SessionService) Encrypt(_ context.Context, publicKey, plain string) (string, error) {
	return s.cipher.Encrypt(plain, publicKey)
}

func (s *SessionService) SignIn(ctx context.Context, req SignInRequest) (models.TokenPair, error) {
	pair, err := s.openPair(ctx, req.RSA)
	if err != nil {
		s.metrics.SignIn(metrics.ResultRejected)
		return models.TokenPair{}, err
	}

	plain, err := s.decrypt(pair, req.Username, req.Password)
	if err != nil {
		s.metrics.SignIn(metrics.ResultRejected)
		return models.TokenPair{}, err
	}
	username, password := plain[0], plain[1]

	account, err := s.repos.Accounts().GetByUsername(ctx, username)
	if err != nil {
		s.metrics.SignIn(metrics.ResultRejected)
		return models.TokenPair{}, entityErr(err)
	}
	if !account.Active || !s.hasher.Matches(password, account.Password) {
		s.metrics.SignIn(metrics.ResultRejected)
		s.logger.Info(ctx, "sign-in rejected", "subject", account.ID)
		return models.TokenPair{}, common.ErrUnauthenticated
	}

	tokens, err := s.startSession(ctx, account)
	if err != nil {
		s.metrics.SignIn(metrics.ResultError)
		return models.TokenPair{}, err
	}

	if err := s.keys.Consume(ctx, req.RSA); err != nil {
		s.logger.Warn(ctx, "key pair not consumed", "error", err)
	}

	s.metrics.SignIn(metrics.ResultOK)
	s.logger.Info(ctx, "signed in", "subject", account.ID)
	return tokens, nil
}

func (s *SessionService) startSession(ctx context.Context, account *models.Account) (models.TokenPair, error) {
	now := s.now()
	if err := s.repos.Accounts().UpdateSignAt(ctx, account.ID, now); err != nil {
		return models.TokenPair{}, entityErr(err)
	}

	// one live session per subject
	if err := s.revoke(ctx, account.ID); err != nil {
		return models.TokenPair{}, err
	}

	accessToken, err := s.tokens.IssueAccessToken(account.ID)
	if err != nil {
		return models.TokenPair{}, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(account.ID)
	if err != nil {
		return models.TokenPair{}, err
	}

	access := models.AccessRecord{ID: accessToken, SubjectID: account.ID, Role: account.Role}
	if err := s.access.Put(ctx, access, s.accessTTL); err != nil {
		return models.TokenPair{}, fmt.Errorf("store access record: %w", err)
	}
	refresh := models.RefreshRecord{ID: refreshToken, Access: access, UpdatedAt: now}
	if err := s.refresh.Put(ctx, refresh, s.refreshTTL); err != nil {
		return models.TokenPair{}, fmt.Errorf("store refresh record: %w", err)
	}

	return models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// SignOut drops the subject's session. Signing out without a session is a
// no-op.
func (s *SessionService) SignOut(ctx context.Context, subjectID string) error {
	if err := s.revoke(ctx, subjectID); err != nil {
		return err
	}
	s.logger.Info(ctx, "signed out", "subject", subjectID)
	return nil
}

func (s *SessionService) revoke(ctx context.Context, subjectID string) error {
	access, err := s.access.GetBySubject(ctx, subjectID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}

	if err := s.refresh.DeleteByAccess(ctx, access.ID); err != nil {
		return err
	}
	return s.access.DeleteBySubject(ctx, subjectID)
}

// ChangePassword replaces the subject's password. A new password equal to
// the current one fails with code CP001, equal to the previous one with CP002.
func (s *SessionService) ChangePassword(ctx context.Context, subjectID string, req ChangePasswordRequest) error {
	pair, err := s.openPair(ctx, req.RSA)
	if err != nil {
		return err
	}

	plain, err := s.decrypt(pair, req.OriginPassword, req.Password)
	if err != nil {
		return err
	}
	origin, password := plain[0], plain[1]

	err = s.repos.WithTx(ctx, func(ctx context.Context, repo accounts.Repository) error {
		account, err := repo.GetByID(ctx, subjectID)
		if err != nil {
			return entityErr(err)
		}

		switch {
		case !s.hasher.Matches(origin, account.Password):
			return common.ErrUnauthenticated
		case s.hasher.Matches(password, account.Password):
			return common.WithCode(common.ErrUnauthenticated, common.CodePasswordIsCurrent)
		case s.hasher.Matches(password, account.PreviousPassword):
			return common.WithCode(common.ErrUnauthenticated, common.CodePasswordIsPrevious)
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		return entityErr(repo.UpdatePassword(ctx, subjectID, hash))
	})
	if err != nil {
		return err
	}

	if err := s.keys.Consume(ctx, req.RSA); err != nil {
		s.logger.Warn(ctx, "key pair not consumed", "error", err)
	}
	s.logger.Info(ctx, "password changed", "subject", subjectID)
	return nil
}

// Refresh trades a refresh token and the access token it was last paired
// with for a new access token. Presenting any other access token is treated
// as replay: every record involved is revoked.
func (s *SessionService) Refresh(ctx context.Context, refreshToken, accessToken string) (string, error) {
	if _, err := s.tokens.ValidateRefreshToken(refreshToken); err != nil {
		s.metrics.Refresh(metrics.ResultRejected)
		return "", err
	}

	unlock, err := s.locker.Lock(ctx, "refresh:"+refreshToken)
	if err != nil {
		s.metrics.Refresh(metrics.ResultError)
		return "", fmt.Errorf("lock refresh record: %w", err)
	}
	defer unlock()

	rec, err := s.refresh.GetByID(ctx, refreshToken)
	if err != nil {
		s.metrics.Refresh(metrics.ResultRejected)
		return "", entityErr(err)
	}

	if rec.Access.ID != accessToken {
		s.metrics.Theft()
		s.metrics.Refresh(metrics.ResultRejected)
		s.logger.Warn(ctx, "stale access token presented, revoking session", "subject", rec.Access.SubjectID)
		if err := s.dropRefresh(ctx, rec, accessToken); err != nil {
			return "", err
		}
		return "", common.ErrUnauthenticated
	}

	now := s.now()
	if now.Sub(rec.UpdatedAt) > s.refreshTTL {
		s.metrics.Refresh(metrics.ResultRejected)
		s.logger.Info(ctx, "refresh idle window elapsed", "subject", rec.Access.SubjectID)
		if err := s.dropRefresh(ctx, rec); err != nil {
			return "", err
		}
		return "", common.ErrUnauthenticated
	}

	newToken, err := s.tokens.IssueAccessToken(rec.Access.SubjectID)
	if err != nil {
		s.metrics.Refresh(metrics.ResultError)
		return "", err
	}
	access := models.AccessRecord{ID: newToken, SubjectID: rec.Access.SubjectID, Role: rec.Access.Role}

	if err := s.access.DeleteByID(ctx, rec.Access.ID); err != nil {
		s.metrics.Refresh(metrics.ResultError)
		return "", err
	}
	if err := s.access.Put(ctx, access, s.accessTTL); err != nil {
		s.metrics.Refresh(metrics.ResultError)
		return "", fmt.Errorf("store access record: %w", err)
	}

	rec.Rotate(access, now)
	if err := s.refresh.Put(ctx, rec, s.refreshTTL); err != nil {
		s.metrics.Refresh(metrics.ResultError)
		return "", fmt.Errorf("store refresh record: %w", err)
	}

	if err := s.repos.Accounts().UpdateSignAt(ctx, access.SubjectID, now); err != nil {
		s.logger.Warn(ctx, "sign-at not updated", "subject", access.SubjectID, "error", err)
	}

	s.metrics.Refresh(metrics.ResultOK)
	return newToken, nil
}

// dropRefresh deletes the refresh record, the access record it points to and
// any extra access ids given.
func (s *SessionService) dropRefresh(ctx context.Context, rec models.RefreshRecord, accessIDs ...string) error {
	for _, id := range append(accessIDs, rec.Access.ID) {
		if err := s.access.DeleteByID(ctx, id); err != nil {
			return err
		}
	}
	return s.refresh.Delete(ctx, rec.ID)
}

// Withdraw marks the account withdrawn and ends its session.
func (s *SessionService) Withdraw(ctx context.Context, subjectID string) error {
	if err := s.repos.Accounts().Withdraw(ctx, subjectID, s.now()); err != nil {
		return entityErr(err)
	}
	if err := s.revoke(ctx, subjectID); err != nil {
		return err
	}
	s.logger.Info(ctx, "account withdrawn", "subject", subjectID)
	return nil
}

func (s *SessionService) Info(ctx context.Context, subjectID string) (*models.Account, error) {
	account, err := s.repos.Accounts().GetByID(ctx, subjectID)
	if err != nil {
		return nil, entityErr(err)
	}
	return account, nil
}

// UpdateInfo sets the nickname (encrypted under req.RSA) and gender.
func (s *SessionService) UpdateInfo(ctx context.Context, subjectID string, req UpdateInfoRequest) error {
	if !req.Gender.Valid() {
		return fmt.Errorf("%w: unknown gender %q", common.ErrBadRequest, req.Gender)
	}

	pair, err := s.openPair(ctx, req.RSA)
	if err != nil {
		return err
	}

	plain, err := s.decrypt(pair, req.Nickname)
	if err != nil {
		return err
	}

	if err := s.repos.Accounts().UpdateProfile(ctx, subjectID, plain[0], req.Gender); err != nil {
		return entityErr(err)
	}

	if err := s.keys.Consume(ctx, req.RSA); err != nil {
		s.logger.Warn(ctx, "key pair not consumed", "error", err)
	}
	return nil
}

// Authenticate resolves an access token to its live session record. Tokens
// that parse but were revoked or superseded fail with ErrUnauthenticated.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (models.AccessRecord, error) {
	subjectID, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return models.AccessRecord{}, err
	}

	rec, err := s.access.GetByID(ctx, accessToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.AccessRecord{}, common.ErrUnauthenticated
		}
		return models.AccessRecord{}, err
	}
	if rec.SubjectID != subjectID {
		return models.AccessRecord{}, common.ErrUnauthenticated
	}
	return rec, nil
}

// EnsureAccount creates an account with the given role unless the username
// already exists. It returns the account either way.
func (s *SessionService) EnsureAccount(ctx context.Context, username, password string, role models.Role) (*models.Account, error) {
	account, err := s.repos.Accounts().GetByUsername(ctx, username)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err = s.repos.Accounts().Create(ctx, &models.Account{
		Username: username,
		Password: hash,
		Role:     role,
		Nickname: username,
		Gender:   models.GenderOthers,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "account created", "subject", account.ID, "role", role)
	return account, nil
}

// openPair checks that publicKey names a live key pair and returns it.
func (s *SessionService) openPair(ctx context.Context, publicKey string) (models.KeyPair, error) {
	ok, err := s.keys.IsValid(ctx, publicKey, s.rsaTTL)
	if err != nil {
		return models.KeyPair{}, err
	}
	if !ok {
		return models.KeyPair{}, common.ErrAccessDenied
	}

	pair, err := s.keys.Fetch(ctx, publicKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.KeyPair{}, common.ErrAccessDenied
		}
		return models.KeyPair{}, err
	}
	return pair, nil
}

func (s *SessionService) decrypt(pair models.KeyPair, ciphertexts ...string) ([]string, error) {
	out := make([]string, len(ciphertexts))
	for i, c := range ciphertexts {
		p, err := s.cipher.Decrypt(c, pair.PrivateKey)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// entityErr maps a repository miss to the service-level not-found error.
func entityErr(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrEntityNotFound
	}
	return err
}
