package application

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quicktalk/quicktalk/internal/domain/entity"
	repo "github.com/quicktalk/quicktalk/internal/domain/repository"
	"github.com/quicktalk/quicktalk/internal/otp"
	"github.com/quicktalk/quicktalk/pkg/helpers"
)

type memUserRepo struct {
	nextID int64
	users  map[string]*entity.User // keyed by email
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(u *entity.User) error {
	if _, ok := r.users[u.Email]; ok {
		return repo.ErrDuplicateEmail
	}
	for _, e := range r.users {
		if e.Username == u.Username {
			return repo.ErrDuplicateUsername
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now().UTC()
	cp := *u
	r.users[u.Email] = &cp
	return nil
}

func (r *memUserRepo) GetByID(id int64) (*entity.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUserRepo) GetByEmail(email string) (*entity.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUserRepo) ExistsByEmail(email string) (bool, error) {
	_, ok := r.users[email]
	return ok, nil
}

func (r *memUserRepo) ExistsByUsername(username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) SetVerified(email string) error {
	u, ok := r.users[email]
	if !ok {
		return repo.ErrNotFound
	}
	u.EmailVerified = true
	return nil
}

func (r *memUserRepo) UpdatePassword(email, passwordHash string) error {
	u, ok := r.users[email]
	if !ok {
		return repo.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// capturingNotifier records every delivered code so tests can replay them.
type capturingNotifier struct {
	codes map[string]string
	calls int
	err   error
}

func newCapturingNotifier() *capturingNotifier {
	return &capturingNotifier{codes: map[string]string{}}
}

func (n *capturingNotifier) SendOTP(_ context.Context, email, code string) error {
	n.calls++
	if n.err != nil {
		return n.err
	}
	n.codes[email] = code
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestAuthService(notify Notifier) (*AuthService, *memUserRepo, *otp.Store) {
	users := newMemUserRepo()
	codes := otp.NewStore(5 * time.Minute)
	svc := NewAuthService(users, codes, notify, nil, nil, quietLogger(), nil, "")
	return svc, users, codes
}

func registerInput(email, username string) RegisterInput {
	return RegisterInput{
		Email:           email,
		Username:        username,
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
		FirstName:       "Siri",
		LastName:        "Example",
	}
}

func TestRegisterVerifyLoginLifecycle(t *testing.T) {
	notify := newCapturingNotifier()
	svc, _, _ := newTestAuthService(notify)
	ctx := context.Background()

	u, err := svc.Register(ctx, registerInput("siri@example.com", "siri"))
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.False(t, u.EmailVerified)
	require.Contains(t, notify.codes, "siri@example.com")

	// Login before verification is rejected.
	_, _, err = svc.Login(ctx, "siri@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	// Wrong code fails and leaves the account unverified.
	err = svc.VerifyEmail(ctx, "siri@example.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidOTP)
	_, _, err = svc.Login(ctx, "siri@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	// The delivered code verifies the account.
	require.NoError(t, svc.VerifyEmail(ctx, "siri@example.com", notify.codes["siri@example.com"]))

	// The code is single use.
	err = svc.VerifyEmail(ctx, "siri@example.com", notify.codes["siri@example.com"])
	assert.ErrorIs(t, err, ErrInvalidOTP)

	got, _, err := svc.Login(ctx, "siri@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "siri", got.Username)
	assert.True(t, got.EmailVerified)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestAuthService(newCapturingNotifier())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.c", Username: "a"})
	assert.ErrorIs(t, err, ErrMissingFields)

	in := registerInput("a@b.c", "a")
	in.ConfirmPassword = "different"
	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestRegisterConflicts(t *testing.T) {
	svc, _, _ := newTestAuthService(newCapturingNotifier())
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("siri@example.com", "siri"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerInput("siri@example.com", "other"))
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, registerInput("other@example.com", "siri"))
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterKeepsUserWhenSendFails(t *testing.T) {
	notify := newCapturingNotifier()
	notify.err = errors.New("smtp down")
	svc, users, codes := newTestAuthService(notify)
	ctx := context.Background()

	u, err := svc.Register(ctx, registerInput("siri@example.com", "siri"))
	assert.ErrorIs(t, err, ErrVerificationSend)
	require.NotNil(t, u)

	// Account exists and a code was issued, so verification can still
	// complete through a later resend.
	stored, gerr := users.GetByEmail("siri@example.com")
	require.NoError(t, gerr)
	assert.False(t, stored.EmailVerified)
	assert.True(t, codes.Live("siri@example.com"))
}

func TestLoginRejections(t *testing.T) {
	notify := newCapturingNotifier()
	svc, _, _ := newTestAuthService(notify)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, registerInput("siri@example.com", "siri"))
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, "siri@example.com", notify.codes["siri@example.com"]))

	_, _, err = svc.Login(ctx, "siri@example.com", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRequestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	notify := newCapturingNotifier()
	svc, _, codes := newTestAuthService(notify)

	err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	assert.NoError(t, err)
	assert.Zero(t, notify.calls)
	assert.False(t, codes.Live("ghost@example.com"))
}

func TestPasswordResetFlow(t *testing.T) {
	notify := newCapturingNotifier()
	svc, users, _ := newTestAuthService(notify)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("siri@example.com", "siri"))
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, "siri@example.com", notify.codes["siri@example.com"]))

	require.NoError(t, svc.RequestPasswordReset(ctx, "siri@example.com"))
	code := notify.codes["siri@example.com"]

	err = svc.ResetPassword(ctx, "siri@example.com", code, "newpass99", "mismatch")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	err = svc.ResetPassword(ctx, "siri@example.com", "000000", "newpass99", "newpass99")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	require.NoError(t, svc.ResetPassword(ctx, "siri@example.com", code, "newpass99", "newpass99"))

	stored, gerr := users.GetByEmail("siri@example.com")
	require.NoError(t, gerr)
	assert.True(t, helpers.CompareHashAndPassword(stored.PasswordHash, "newpass99"))
	assert.False(t, helpers.CompareHashAndPassword(stored.PasswordHash, "hunter22"))

	// Reset never touches the verified flag.
	assert.True(t, stored.EmailVerified)

	_, _, err = svc.Login(ctx, "siri@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "siri@example.com", "newpass99")
	assert.NoError(t, err)
}

func TestProfileUnknownUser(t *testing.T) {
	svc, _, _ := newTestAuthService(newCapturingNotifier())
	_, err := svc.Profile(42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// failingUserRepo simulates a storage outage on every lookup.
type failingUserRepo struct {
	repo.UserRepository
	err error
}

func (r *failingUserRepo) GetByEmail(string) (*entity.User, error) { return nil, r.err }
func (r *failingUserRepo) GetByID(int64) (*entity.User, error)     { return nil, r.err }

func TestStorageFaultIsNotAbsence(t *testing.T) {
	boom := errors.New("connection refused")
	notify := newCapturingNotifier()
	users := &failingUserRepo{UserRepository: newMemUserRepo(), err: boom}
	codes := otp.NewStore(5 * time.Minute)
	svc := NewAuthService(users, codes, notify, nil, nil, quietLogger(), nil, "")
	ctx := context.Background()

	// A broken store must surface as the raw error, never as a
	// credential, OTP, or not-found rejection.
	_, _, err := svc.Login(ctx, "siri@example.com", "hunter22")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	code, ierr := codes.Issue("siri@example.com")
	require.NoError(t, ierr)
	err = svc.VerifyEmail(ctx, "siri@example.com", code)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUserNotFound)

	// Reset request must not hide the outage behind the generic
	// success, and must not hand a code to the notifier.
	err = svc.RequestPasswordReset(ctx, "siri@example.com")
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, notify.calls)
	assert.False(t, codes.Live("siri@example.com"))

	code, ierr = codes.Issue("siri@example.com")
	require.NoError(t, ierr)
	err = svc.ResetPassword(ctx, "siri@example.com", code, "newpass99", "newpass99")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Profile(7)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

// conflictingUserRepo reports the handle as free but fails the insert,
// the same shape a lost registration race has against the database's
// unique constraints.
type conflictingUserRepo struct {
	*memUserRepo
	conflict error
}

func (r *conflictingUserRepo) ExistsByEmail(string) (bool, error)    { return false, nil }
func (r *conflictingUserRepo) ExistsByUsername(string) (bool, error) { return false, nil }
func (r *conflictingUserRepo) Create(*entity.User) error             { return r.conflict }

func TestRegisterMapsInsertConflicts(t *testing.T) {
	for _, tc := range []struct {
		conflict error
		want     error
	}{
		{repo.ErrDuplicateEmail, ErrEmailTaken},
		{repo.ErrDuplicateUsername, ErrUsernameTaken},
	} {
		users := &conflictingUserRepo{memUserRepo: newMemUserRepo(), conflict: tc.conflict}
		svc := NewAuthService(users, otp.NewStore(time.Minute), newCapturingNotifier(), nil, nil, quietLogger(), nil, "")
		_, err := svc.Register(context.Background(), registerInput("siri@example.com", "siri"))
		assert.ErrorIs(t, err, tc.want)
	}
}
