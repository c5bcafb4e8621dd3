package auth

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-user-auth/middleware/jwtware"
)

// HTTPStatus maps an error to the status code we answer with
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler is the fiber error handler. Server side failures are
// logged and answered with a generic body.
func ErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		status := HTTPStatus(err)

		if status >= http.StatusInternalServerError {
			var richErr *errors.Error
			if !errors.As(err, &richErr) {
				richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
					WithCode(errors.CodeInternal)
			}

			logger.Error(
				"request failed",
				"method", c.Method(),
				"path", c.OriginalURL(),
				"error", err,
				"text_code", richErr.TextCode,
				"details", print.MaybePrettyJSON(richErr.Metadata),
			)

			return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
		}

		return c.Status(status).JSON(fiber.Map{"error": errorMessage(err)})
	}
}

// ProtectedRoute returns the token gate for the given validator
func ProtectedRoute(cfg Config, validator TokenValidator, logger Logger) fiber.Handler {
	if logger == nil {
		logger = defLogger{}
	}

	return jwtware.New(jwtware.Config{
		ErrorHandler:   authErrorHandler(logger),
		TokenValidator: jwtwareValidator{validator: validator},
		AuthScheme:     cfg.GetAuthScheme(),
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if c, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(ctx, c)
			}
			return ctx
		},
		ValidationListeners: []jwtware.ValidationListener{
			func(c *fiber.Ctx, claims jwtware.AuthClaims) error {
				logger.Debug("token accepted",
					"user_id", claims.UserID(),
					"method", c.Method(),
					"path", c.OriginalURL(),
				)
				return nil
			},
		},
	})
}

func authErrorHandler(logger Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error
		switch {
		case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
			richErr = errors.New(jwtware.ErrJWTMissingOrMalformed.Error(), errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized)
		case IsTokenExpiredError(err):
			richErr = ErrTokenExpired
		case IsMalformedError(err):
			richErr = ErrTokenMalformed
		default:
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeUnauthorized)
		}

		logger.Info(
			"Authentication error",
			"error", richErr.Message,
			"text_code", richErr.TextCode,
			"path", c.OriginalURL(),
		)

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": richErr.Message})
	}
}

type jwtwareValidator struct {
	validator TokenValidator
}

func (v jwtwareValidator) Validate(token string) (jwtware.AuthClaims, error) {
	claims, err := v.validator.Validate(token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RegisterRoutes wires the public auth endpoints and the gated user
// resource onto app.
func RegisterRoutes(app fiber.Router, ctrl *UsersController, gate fiber.Handler) {
	app.Get("/health", ctrl.Health)
	app.Post("/register", ctrl.Register)
	app.Post("/login", ctrl.Login)

	users := app.Group("/users", gate)
	users.Get("/", ctrl.List)
	users.Get("/:id", ctrl.Show)
	users.Put("/:id", ctrl.Update)
	users.Delete("/:id", ctrl.Delete)
}

// NewHTTPServer builds the fiber app with every route registered
func NewHTTPServer(ctrl *UsersController, gate fiber.Handler, logger Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "go-user-auth",
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger),
	})

	RegisterRoutes(app, ctrl, gate)

	return app
}
