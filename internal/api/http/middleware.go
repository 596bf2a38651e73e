package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/api/dto"
	"github.com/spec-kit/ticket-client/internal/observability"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	logger = observability.OrNop(logger)
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(requestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func requestLogger(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		duration := time.Since(start)
		route := c.Method() + " " + c.Route().Path
		metrics.RecordRequest(route, status, duration)
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("request_id", c.Get("X-Request-ID")))
		return err
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = writeError(c, logger, metrics, err)
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, logger *zap.Logger, metrics *observability.Metrics, err error) error {
	status := apperrors.StatusOf(err)
	domainErr := apperrors.ToDomainError(err)
	if fe, ok := err.(*fiber.Error); ok {
		status = fe.Code
		domainErr = apperrors.NewDomainError(fiberCode(fe.Code), fe.Message, nil)
	}
	metrics.RecordOutcome(c.Method()+" "+c.Route().Path, domainErr.Code)
	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}
	return c.Status(status).JSON(dto.ErrorBody{Error: dto.ErrorDetail{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Details: domainErr.Details,
	}})
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return apperrors.CodeNotFound
	case fiber.StatusUnauthorized:
		return apperrors.CodeUnauthenticated
	case fiber.StatusForbidden:
		return apperrors.CodeForbidden
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return apperrors.CodeValidation
	default:
		return apperrors.CodeInternal
	}
}
