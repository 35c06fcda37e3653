package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/storefront-api/internal/model"
	"github.com/iliyamo/storefront-api/internal/queue"
	"github.com/iliyamo/storefront-api/internal/utils"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// AccountsConfig tunes registration.
type AccountsConfig struct {
	BcryptCost   int
	CartSlots    int
	StoreTimeout time.Duration
}

// Accounts registers and authenticates users.
type Accounts struct {
	users     UserStore
	tokens    TokenIssuer
	events    EventPublisher
	log       logrus.FieldLogger
	cfg       AccountsConfig
	dummyHash string
	now       func() time.Time
}

// NewAccounts wires the account service.  events may be nil.
func NewAccounts(users UserStore, tokens TokenIssuer, events EventPublisher, log logrus.FieldLogger, cfg AccountsConfig) *Accounts {
	if events == nil {
		events = queue.Discard{}
	}
	// Hash compared against on unknown emails so both login failures cost
	// one bcrypt round.
	dummy, _ := utils.HashPassword("storefront-login-placeholder", cfg.BcryptCost)
	return &Accounts{
		users:     users,
		tokens:    tokens,
		events:    events,
		log:       log.WithField("component", "accounts"),
		cfg:       cfg,
		dummyHash: dummy,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user with an empty cart and returns an identity token.
// A second registration for the same email fails with ErrDuplicateEmail and
// never creates a second record.
func (a *Accounts) Register(ctx context.Context, name, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("register: %w: email and password are required", ErrInvalidInput)
	}
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("register: %w", ErrPasswordTooLong)
	}

	_, err := call(ctx, a.cfg.StoreTimeout, "register: lookup", func(ctx context.Context) (*model.User, error) {
		return a.users.UserByEmail(ctx, email)
	})
	switch {
	case err == nil:
		return "", fmt.Errorf("register: %w", ErrDuplicateEmail)
	case !errors.Is(err, ErrNotFound):
		return "", err
	}

	hash, err := utils.HashPassword(password, a.cfg.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("register: %w: %w", ErrPasswordTooLong, err)
	}
	if err != nil {
		return "", fmt.Errorf("register: hash password: %w", err)
	}
	u := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Cart:         model.NewCart(a.cfg.CartSlots),
		CreatedAt:    a.now(),
	}
	// The unique index decides races between concurrent registrations.
	if err := exec(ctx, a.cfg.StoreTimeout, "register: create", func(ctx context.Context) error {
		return a.users.CreateUser(ctx, u)
	}); err != nil {
		return "", err
	}

	token, err := a.tokens.Issue(u.ID)
	if err != nil {
		return "", fmt.Errorf("register: issue token: %w", err)
	}
	a.log.WithField("user_id", u.ID).Info("user registered")
	publish(ctx, a.events, a.log, queue.Event{
		Type:       queue.EventUserRegistered,
		UserID:     u.ID,
		Email:      u.Email,
		OccurredAt: u.CreatedAt,
	})
	return token, nil
}

// Login verifies credentials and returns an identity token.  Unknown email
// and wrong password are indistinguishable to the caller.
func (a *Accounts) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	u, err := call(ctx, a.cfg.StoreTimeout, "login: lookup", func(ctx context.Context) (*model.User, error) {
		return a.users.UserByEmail(ctx, email)
	})
	if errors.Is(err, ErrNotFound) {
		utils.VerifyPassword(a.dummyHash, password)
		return "", fmt.Errorf("login: %w", ErrInvalidCredentials)
	}
	if err != nil {
		return "", err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return "", fmt.Errorf("login: %w", ErrInvalidCredentials)
	}

	token, err := a.tokens.Issue(u.ID)
	if err != nil {
		return "", fmt.Errorf("login: issue token: %w", err)
	}
	return token, nil
}

const publishTimeout = 2 * time.Second

// publish sends ev detached from the request's cancellation.  Failures are
// logged and swallowed.
func publish(ctx context.Context, p EventPublisher, log logrus.FieldLogger, ev queue.Event) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(pctx, ev); err != nil {
		log.WithError(err).WithField("event", ev.Type).Warn("event not published")
	}
}
