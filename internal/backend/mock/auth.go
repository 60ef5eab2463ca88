package mock

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FairForge/backplane/internal/provider"
)

func (b *Backend) CurrentUser(ctx context.Context) (*provider.User, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return nil, provider.ErrUnauthenticated
	}
	cp := *b.current
	return &cp, nil
}

// Login succeeds for any password when a fixture user with the email exists.
// Skipping the password check is a deliberate development ergonomics choice,
// not production behavior.
func (b *Backend) Login(ctx context.Context, email, _ string) (*provider.Session, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	user, ok := b.users[strings.ToLower(email)]
	if !ok {
		return nil, provider.ErrUnauthenticated
	}

	b.current = user
	b.session = &provider.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	b.logger.Debug("mock login", zap.String("email", email))

	cp := *b.session
	return &cp, nil
}

func (b *Backend) Logout(ctx context.Context) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = nil
	b.session = nil
	return nil
}

func (b *Backend) Register(ctx context.Context, email, _, name string) (*provider.User, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := b.users[key]; exists {
		return nil, provider.ErrConflict
	}

	user := &provider.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}
	b.users[key] = user

	cp := *user
	return &cp, nil
}

func (b *Backend) SendPasswordRecovery(ctx context.Context, email, _ string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.logger.Debug("mock password recovery", zap.String("email", email))
	return nil
}

func (b *Backend) ConfirmPasswordRecovery(ctx context.Context, userID, _, _ string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.logger.Debug("mock password recovery confirm", zap.String("user", userID))
	return nil
}

func (b *Backend) SendVerification(ctx context.Context, _ string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return provider.ErrUnauthenticated
	}
	return nil
}

func (b *Backend) ConfirmVerification(ctx context.Context, userID, _ string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range b.users {
		if u.ID == userID {
			u.EmailVerified = true
			return nil
		}
	}
	return provider.ErrNotFound
}
