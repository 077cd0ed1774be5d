package middleware

import (
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Logging logs every handled update with its outcome.
func Logging(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)

			fields := []zap.Field{
				zap.Int64("user_id", c.Sender().ID),
				zap.Duration("took", time.Since(start)),
			}
			if cb := c.Callback(); cb != nil {
				fields = append(fields, zap.String("callback", cb.Unique))
			} else {
				fields = append(fields, zap.String("text", c.Text()))
			}

			if err != nil {
				logger.Warn("Update handling failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("Update handled", fields...)
			}
			return err
		}
	}
}

// Recover keeps a panicking handler from killing the event loop.
func Recover(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Handler panicked",
						zap.Int64("user_id", c.Sender().ID),
						zap.Any("panic", r),
						zap.Stack("stack"),
					)
				}
			}()
			return next(c)
		}
	}
}
