package auth

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// UsersController serves registration, login and the user resource
type UsersController struct {
	Debug  bool
	Logger Logger
	Repo   RepositoryManager
	Auther *Auther
	Hasher PasswordAuthenticator
}

type UsersControllerOption func(*UsersController) *UsersController

// WithControllerLogger sets the controller logger
func WithControllerLogger(logger Logger) UsersControllerOption {
	return func(uc *UsersController) *UsersController {
		if logger != nil {
			uc.Logger = logger
		}
		return uc
	}
}

// WithControllerHasher sets the hasher used for password changes
func WithControllerHasher(hasher PasswordAuthenticator) UsersControllerOption {
	return func(uc *UsersController) *UsersController {
		if hasher != nil {
			uc.Hasher = hasher
		}
		return uc
	}
}

// WithControllerDebug dumps request payloads to the logger
func WithControllerDebug(debug bool) UsersControllerOption {
	return func(uc *UsersController) *UsersController {
		uc.Debug = debug
		return uc
	}
}

func NewUsersController(repo RepositoryManager, auther *Auther, opts ...UsersControllerOption) *UsersController {
	c := &UsersController{
		Logger: defLogger{},
		Repo:   repo,
		Auther: auther,
		Hasher: BcryptHasher{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in users controller...")
	}

	if c.Auther == nil {
		panic("Missing Auther in users controller...")
	}

	return c
}

// RegisterRequest payload
type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginRequest payload
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Normalize trims the username, passwords are taken as sent
func (r LoginRequest) Normalize() LoginRequest {
	r.Username = strings.TrimSpace(r.Username)
	return r
}

// Validate will run validation rules
func (r LoginRequest) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Required),
			validation.Field(&r.Password, validation.Required),
		)
	}, "invalid login request payload")
}

// UpdateUserRequest carries the fields a PUT may change. Nil fields keep
// the stored value.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// Merge builds the replacement record from the stored one
func (r UpdateUserRequest) Merge(existing User, hasher PasswordAuthenticator) (User, error) {
	hash, err := r.HashPassword(hasher)
	if err != nil {
		return User{}, err
	}
	return r.MergeHashed(existing, hash)
}

// HashPassword returns the hash of the new password or an empty string
// when the request leaves the password alone.
func (r UpdateUserRequest) HashPassword(hasher PasswordAuthenticator) (string, error) {
	if r.Password == nil {
		return "", nil
	}
	return hasher.HashPassword(*r.Password)
}

// MergeHashed is Merge with the password already hashed
func (r UpdateUserRequest) MergeHashed(existing User, hash string) (User, error) {
	merged := existing

	if r.Username != nil {
		merged.Username = strings.TrimSpace(*r.Username)
	}
	if r.Email != nil {
		merged.Email = strings.TrimSpace(*r.Email)
	}
	if r.Role != nil {
		merged.Role = UserRole(*r.Role)
	}
	if hash != "" {
		merged.PasswordHash = hash
	}

	if err := validateUserRecord(merged); err != nil {
		return User{}, err
	}

	return merged, nil
}

func validateUserRecord(u User) *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&u,
			validation.Field(&u.Username, validation.Required, validation.Length(1, 64)),
			validation.Field(&u.Email, is.Email),
			validation.Field(&u.Role, roleRule),
			validation.Field(&u.PasswordHash, validation.Required),
		)
	}, "invalid user record")
}

func (a *UsersController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (a *UsersController) Register(c *fiber.Ctx) error {
	payload := new(RegisterRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ErrUnableToParseData.Message})
	}

	a.debug("register", fiber.Map{"username": payload.Username, "email": payload.Email})

	_, err := a.Auther.Register(c.UserContext(), RegisterUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		if HTTPStatus(err) >= fiber.StatusInternalServerError {
			return err
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": errorMessage(err)})
	}

	return c.JSON(fiber.Map{"message": "user registered successfully"})
}

// Login answers 400 both for unknown users and bad passwords
func (a *UsersController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ErrUnableToParseData.Message})
	}

	*payload = payload.Normalize()

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Message})
	}

	a.debug("login", fiber.Map{"username": payload.Username})

	token, err := a.Auther.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			switch richErr.Category {
			case errors.CategoryNotFound:
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "user not found"})
			case errors.CategoryAuth:
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid password"})
			}
		}
		return err
	}

	return c.JSON(fiber.Map{"token": token})
}

func (a *UsersController) List(c *fiber.Ctx) error {
	records, err := a.Repo.Users().List(c.UserContext())
	if err != nil {
		return err
	}

	out := make([]UserResponse, 0, len(records))
	for i := range records {
		out = append(out, NewUserResponse(&records[i]))
	}

	return c.JSON(out)
}

func (a *UsersController) Show(c *fiber.Ctx) error {
	user, err := a.Repo.Users().GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return a.userError(c, err)
	}

	return c.JSON(NewUserResponse(user))
}

func (a *UsersController) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	payload := new(UpdateUserRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrUnableToParseData.Message})
	}

	hash, err := payload.HashPassword(a.Hasher)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errorMessage(err)})
	}

	// read, merge and write under one lock so concurrent PUTs to the
	// same record apply in order
	var user *User
	err = a.Repo.RunInTx(c.UserContext(), func(ctx context.Context, tx *Collection) error {
		existing, err := a.Repo.Users().GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}

		merged, err := payload.MergeHashed(*existing, hash)
		if err != nil {
			return err
		}

		if i := tx.FindByUsername(merged.Username); i >= 0 && tx.Users[i].ID != existing.ID {
			return ErrUsernameTaken.Clone().WithMetadata(map[string]any{
				"username": merged.Username,
			})
		}

		a.debug("update", NewUserResponse(&merged))

		user, err = a.Repo.Users().UpdateTx(ctx, tx, id, &merged)
		return err
	})
	if err != nil {
		if HTTPStatus(err) == fiber.StatusBadRequest {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errorMessage(err)})
		}
		return a.userError(c, err)
	}

	return c.JSON(NewUserResponse(user))
}

func (a *UsersController) Delete(c *fiber.Ctx) error {
	removed, err := a.Repo.Users().Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	if !removed {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrUserNotFound.Message})
	}

	return c.JSON(fiber.Map{"message": "user deleted successfully"})
}

func (a *UsersController) userError(c *fiber.Ctx, err error) error {
	if IsUserNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrUserNotFound.Message})
	}
	return err
}

func (a *UsersController) debug(action string, payload any) {
	if !a.Debug {
		return
	}
	a.Logger.Debug(fmt.Sprintf("users controller %s", action), "payload", print.MaybePrettyJSON(payload))
}

func errorMessage(err error) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Message
	}
	return err.Error()
}
