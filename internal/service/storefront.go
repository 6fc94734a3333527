package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/and161185/storefront/internal/errs"
	"github.com/and161185/storefront/internal/model"
	"github.com/and161185/storefront/internal/repository"
	"go.uber.org/zap"
)

// MinPasswordLen is the minimum password length accepted at registration.
const MinPasswordLen = 6

// RegisterInput is the registration form.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Storefront wires the core components together for adapters.
type Storefront struct {
	Accounts  *CredentialStore
	Sessions  *SessionManager
	Inventory *Inventory
	Cart      *Cart
	log       *zap.Logger
}

// NewStorefront loads every component from store, using catalog as the product list.
func NewStorefront(ctx context.Context, store repository.Store, catalog []model.Product, log *zap.Logger) *Storefront {
	if log == nil {
		log = zap.NewNop()
	}
	inv := NewInventory(ctx, catalog, store, log.Named("inventory"))
	return &Storefront{
		Accounts:  NewCredentialStore(ctx, store, log.Named("accounts")),
		Sessions:  NewSessionManager(ctx, store, log.Named("sessions")),
		Inventory: inv,
		Cart:      NewCart(inv, log.Named("cart")),
		log:       log,
	}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Validate applies the registration form rules in order: all fields present,
// passwords match, minimum length.
func (in RegisterInput) Validate() error {
	if blank(in.Name) || blank(in.Email) || in.Password == "" || in.ConfirmPassword == "" {
		return fmt.Errorf("%w: all fields are required", errs.ErrValidation)
	}
	if in.Password != in.ConfirmPassword {
		return fmt.Errorf("%w: passwords do not match", errs.ErrValidation)
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLen {
		return fmt.Errorf("%w: password must have at least %d characters", errs.ErrValidation, MinPasswordLen)
	}
	return nil
}

// Register validates the form, creates the account and logs the visitor in.
func (s *Storefront) Register(ctx context.Context, in RegisterInput) (model.Session, error) {
	if err := in.Validate(); err != nil {
		return model.Session{}, err
	}
	acc, err := s.Accounts.Register(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		return model.Session{}, err
	}
	sess := model.SessionOf(acc)
	if err := s.Sessions.Login(ctx, sess); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

// Login authenticates and replaces the current session.
func (s *Storefront) Login(ctx context.Context, email, password string) (model.Session, error) {
	if blank(email) || password == "" {
		return model.Session{}, fmt.Errorf("%w: all fields are required", errs.ErrValidation)
	}
	acc, ok := s.Accounts.Authenticate(email, password)
	if !ok {
		// unknown email and wrong password look the same
		return model.Session{}, errs.ErrInvalidCredentials
	}
	sess := model.SessionOf(acc)
	if err := s.Sessions.Login(ctx, sess); err != nil {
		return model.Session{}, err
	}
	s.log.Info("login", zap.String("account", acc.ID))
	return sess, nil
}

// Logout clears the session and the cart.
func (s *Storefront) Logout(ctx context.Context) error {
	if err := s.Sessions.Logout(ctx); err != nil {
		return err
	}
	s.Cart.Clear()
	return nil
}

// Capability returns Authenticated while a session exists, Guest otherwise.
func (s *Storefront) Capability() model.Capability {
	if sess, ok := s.Sessions.Current(); ok {
		return model.Authenticated{Session: sess}
	}
	return model.Guest{}
}
