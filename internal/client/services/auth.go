package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/vimesta/internal/client/client"
	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/common"
	"github.com/dmitrijs2005/vimesta/internal/logging"
)

var ErrInvalidOTP = errors.New("otp must be 6 digits")

// AuthService covers login through the Telegram OTP flow or a Telegram
// login payload, restoring a persisted session and logging out.
type AuthService interface {
	RequestOTP(ctx context.Context, phone string) (string, error)
	VerifyOTP(ctx context.Context, phone, otp string) (*models.User, error)
	TelegramLogin(ctx context.Context, payload models.TelegramLogin) (*models.User, error)
	Restore(ctx context.Context) (*models.User, error)
	Verify(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	CurrentUser() *models.User
}

type authService struct {
	client client.Client
	store  *SessionStore
	log    logging.Logger

	mu   sync.RWMutex
	user *models.User
}

// NewAuthService wires the service to the API client. Any 401 seen by the
// client drops the persisted session.
func NewAuthService(c client.Client, store *SessionStore, log logging.Logger) AuthService {
	a := &authService{client: c, store: store, log: log}
	c.OnUnauthorized(a.expire)
	return a
}

func (a *authService) expire() {
	a.setUser(nil)
	if err := a.store.Clear(context.Background()); err != nil {
		a.log.Error(context.Background(), "failed to clear expired session", "error", err)
	}
}

func (a *authService) setUser(u *models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = u
}

func (a *authService) CurrentUser() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

// RequestOTP asks the backend to send a code and returns the normalized
// phone number the code was sent for.
func (a *authService) RequestOTP(ctx context.Context, phone string) (string, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return "", errors.New("phone required")
	}
	if err := a.client.RequestOTP(ctx, phone); err != nil {
		return "", fmt.Errorf("request otp: %w", err)
	}
	return phone, nil
}

func (a *authService) VerifyOTP(ctx context.Context, phone, otp string) (*models.User, error) {
	otp = strings.TrimSpace(otp)
	if len(otp) != 6 || strings.Trim(otp, "0123456789") != "" {
		return nil, ErrInvalidOTP
	}

	sess, err := a.client.VerifyOTP(ctx, NormalizePhone(phone), otp)
	if err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	return a.persist(ctx, sess)
}

func (a *authService) TelegramLogin(ctx context.Context, payload models.TelegramLogin) (*models.User, error) {
	if payload.ID == 0 {
		return nil, errors.New("telegram id required")
	}
	sess, err := a.client.TelegramLogin(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return a.persist(ctx, sess)
}

func (a *authService) persist(ctx context.Context, sess *models.Session) (*models.User, error) {
	if err := a.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	a.client.SetToken(sess.Token)
	a.setUser(sess.User)
	a.log.Info(ctx, "logged in", "user", sess.User.DisplayName())
	return sess.User, nil
}

// Restore loads the persisted session and arms the client with its token.
func (a *authService) Restore(ctx context.Context) (*models.User, error) {
	sess, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	a.client.SetToken(sess.Token)
	a.setUser(sess.User)
	return sess.User, nil
}

// Verify confirms the session with the backend and refreshes the stored
// profile.
func (a *authService) Verify(ctx context.Context) (*models.User, error) {
	if a.client.Token() == "" {
		return nil, common.ErrNotAuthenticated
	}

	user, err := a.client.VerifySession(ctx)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if err := a.store.Save(ctx, &models.Session{Token: a.client.Token(), User: user}); err != nil {
			return nil, fmt.Errorf("session saving error: %w", err)
		}
		a.setUser(user)
	}
	return user, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetToken("")
	a.setUser(nil)
	return a.store.Clear(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Health(ctx)
}
