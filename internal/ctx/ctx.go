// Package ctx
package ctx

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ContextLogValues should only be accessed for logging, and not for
// actual business logic, or any other logic
type ContextLogValues struct {
	// Added in base middleware
	RequestID       string
	StartTime       time.Time
	StatusCode      int
	RequestDuration time.Duration
	Path            string

	// Added by the generate router once known
	AccountID    string
	Model        string
	Stream       bool
	InputTokens  int64
	OutputTokens int64
	BilledCost   float64

	// Override log Log Level
	// useful for streaming where status code might be sent before errors from
	// mid-stream or post processing occur
	LogLevel string

	// Added dynamically
	Error error
}

// AddError adds errors to the error chain. Always add errors, even if only warnings.
// Log level is determined by the status code of the reuqest
func (c *ContextLogValues) AddError(err error) {
	if err == nil {
		return
	}
	if c.Error == nil {
		c.Error = err
		return
	}
	c.Error = fmt.Errorf("%w: %w", err, c.Error)
}

func (c *ContextLogValues) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if c.AccountID != "" {
		enc.AddString("account_id", c.AccountID)
	}
	if c.Model != "" {
		enc.AddString("model", c.Model)
		enc.AddBool("stream", c.Stream)
		enc.AddInt64("input_tokens", c.InputTokens)
		enc.AddInt64("output_tokens", c.OutputTokens)
		enc.AddFloat64("billed_cost", c.BilledCost)
	}
	enc.AddString("request_id", c.RequestID)
	enc.AddTime("start_time", c.StartTime)
	enc.AddDuration("request_duration", c.RequestDuration)
	enc.AddInt("status_code", c.StatusCode)
	if c.Error != nil {
		enc.AddString("error", c.Error.Error())
	}
	enc.AddString("path", c.Path)
	return nil
}

type Context struct {
	echo.Context
	Log       *zap.SugaredLogger
	Reqid     string
	LogValues *ContextLogValues
}
