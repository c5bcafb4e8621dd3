package auth

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

type RegisterUserMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Normalize trims the fields that are matched or stored verbatim
func (e RegisterUserMessage) Normalize() RegisterUserMessage {
	e.Username = strings.TrimSpace(e.Username)
	e.Email = strings.TrimSpace(e.Email)
	return e
}

// Validate will run validation rules
func (e RegisterUserMessage) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&e,
			validation.Field(&e.Username, validation.Required, validation.Length(1, 64)),
			validation.Field(&e.Password, validation.Required),
			validation.Field(&e.Email, is.Email),
			validation.Field(&e.Role, roleRule),
		)
	}, "invalid registration payload")
}

type RegisterUserHandler struct {
	repo   RepositoryManager
	hasher PasswordAuthenticator
	logger Logger
}

func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:   repo,
		hasher: BcryptHasher{},
		logger: defLogger{},
	}
}

func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	_, err := h.Handle(ctx, event)
	return err
}

// Handle registers the user and returns the stored record
func (h *RegisterUserHandler) Handle(ctx context.Context, event RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	event = event.Normalize()

	if err := event.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	hash, err := h.hasher.HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	record := &User{
		Username:     event.Username,
		Email:        event.Email,
		PasswordHash: hash,
		Role:         UserRole(event.Role),
	}

	var user *User
	err = h.repo.RunInTx(ctx, func(ctx context.Context, tx *Collection) error {
		if _, err := h.repo.Users().GetByUsernameTx(ctx, tx, record.Username); err == nil {
			return ErrUsernameTaken.Clone().WithMetadata(map[string]any{
				"username": record.Username,
			})
		}

		var err error
		user, err = h.repo.Users().InsertTx(ctx, tx, record)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	return user, nil
}
