package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/quicktalk/quicktalk/internal/domain/entity"
	repo "github.com/quicktalk/quicktalk/internal/domain/repository"
	"github.com/quicktalk/quicktalk/internal/otp"
	"github.com/quicktalk/quicktalk/pkg/helpers"
)

// Notifier delivers a verification code to an email address. The
// production implementation enqueues a mail job; failures are surfaced
// to the caller as ErrVerificationSend.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string) error
}

// AuthService drives the account lifecycle: register (pending
// verification) -> verify email via OTP -> login. Password reset is an
// orthogonal OTP flow that never changes verification state.
type AuthService struct {
	Users        repo.UserRepository
	Codes        *otp.Store
	Notify       Notifier
	JWT          *helpers.JWTManager
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewAuthService(users repo.UserRepository, codes *otp.Store, notify Notifier, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string) *AuthService {
	return &AuthService{
		Users:        users,
		Codes:        codes,
		Notify:       notify,
		JWT:          jwt,
		Redis:        rdb,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
	}
}

type RegisterInput struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Gender          string
	DateOfBirth     *time.Time
	CountryOfOrigin string
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Register creates an unverified account and hands an OTP to the
// notifier. If the notifier fails the account is kept (the user retries
// verification later) and ErrVerificationSend is returned alongside the
// created user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, ErrMissingFields
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if taken, err := s.Users.ExistsByEmail(email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := s.Users.ExistsByUsername(username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:           email,
		Username:        username,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		PasswordHash:    hash,
		Gender:          in.Gender,
		DateOfBirth:     in.DateOfBirth,
		CountryOfOrigin: in.CountryOfOrigin,
		EmailVerified:   false,
	}
	// The DB unique constraints are the authority; the Exists checks
	// above only give friendlier ordering. Two concurrent registrations
	// for the same handle resolve here: one insert wins, the other maps
	// to a conflict.
	if err := s.Users.Create(u); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, repo.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	_ = s.indexUser(ctx, u)

	code, err := s.Codes.Issue(email)
	if err != nil {
		s.Logger.WithError(err).WithField("email", email).Error("otp issue failed")
		return u, ErrVerificationSend
	}
	if err := s.Notify.SendOTP(ctx, email, code); err != nil {
		s.Logger.WithError(err).WithField("email", email).Error("otp email send failed")
		return u, ErrVerificationSend
	}
	return u, nil
}

// VerifyEmail consumes the OTP and flips the account to verified. The
// code is burned on first successful match, so repeating the call
// fails with ErrInvalidOTP.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(code) == "" {
		return ErrMissingFields
	}
	if !s.Codes.Consume(email, code) {
		return ErrInvalidOTP
	}
	u, err := s.Users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.Users.SetVerified(email); err != nil {
		return err
	}
	s.Logger.WithField("username", u.Username).Info("email verified")
	return nil
}

// Login authenticates by email and password. Unknown accounts and wrong
// passwords both come back as ErrInvalidCredentials; only a verified
// account with the right password gets through.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, TokenPair{}, ErrMissingFields
	}
	u, err := s.Users.GetByEmail(email)
	if err != nil {
		// a storage fault must not read as bad credentials
		if errors.Is(err, repo.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if !u.EmailVerified {
		return nil, TokenPair{}, ErrEmailNotVerified
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// issueTokens generates an access/refresh pair and records a session in Redis.
func (s *AuthService) issueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	if s.JWT == nil {
		return TokenPair{}, nil
	}
	uid := strconv.FormatInt(u.ID, 10)
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(uid, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(uid, sid)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(uid)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    uid,
			"username":   u.Username,
			"email":      u.Email,
			"sid":        sid,
			"created_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session id and token pair for a valid refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, sessionKey(claims.UserID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, ErrInvalidCredentials
		}
	}
	return s.issueTokens(ctx, u)
}

// Logout drops the Redis session for the user.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	if s.Redis != nil && userID != "" {
		_ = s.Redis.Del(ctx, sessionKey(userID)).Err()
	}
}

// RequestPasswordReset issues a reset OTP when the account exists and
// stays silent when it does not, so the endpoint cannot be used to
// probe for registered emails.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrMissingFields
	}
	if _, err := s.Users.GetByEmail(email); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Logger.WithField("email", email).Debug("reset requested for unknown email")
			return nil
		}
		return err
	}
	code, err := s.Codes.Issue(email)
	if err != nil {
		s.Logger.WithError(err).WithField("email", email).Error("otp issue failed")
		return ErrVerificationSend
	}
	if err := s.Notify.SendOTP(ctx, email, code); err != nil {
		s.Logger.WithError(err).WithField("email", email).Error("reset email send failed")
		return ErrVerificationSend
	}
	return nil
}

// ResetPassword consumes the reset OTP and replaces the credential hash.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword, confirmPassword string) error {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(code) == "" || newPassword == "" || confirmPassword == "" {
		return ErrMissingFields
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if !s.Codes.Consume(email, code) {
		return ErrInvalidOTP
	}
	u, err := s.Users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(email, hash); err != nil {
		return err
	}
	s.Logger.WithField("username", u.Username).Info("password reset")
	return nil
}

// Profile returns the account for the given id.
func (s *AuthService) Profile(id int64) (*entity.User, error) {
	u, err := s.Users.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"country":    u.CountryOfOrigin,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESUsersIndex,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("username", u.Username).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("username", u.Username).Warn("es index response error")
	}
	return nil
}

// SearchUsers performs a multi_match search over username, email, and
// name fields. Used to find a chat partner.
func (s *AuthService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "email", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
