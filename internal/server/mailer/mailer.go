// Package mailer defines the narrow out-of-band delivery interface for
// verification codes. Real transactional email is an external collaborator;
// the core only depends on this contract.
package mailer

import (
	"context"

	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/logging"
)

// CodeSender delivers a verification code to the user out of band.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string, purpose common.Purpose) error
}

// LogSender is the development implementation: it records delivery in the
// structured log instead of sending mail. The code value itself only appears
// at debug level.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendCode(ctx context.Context, email, code string, purpose common.Purpose) error {
	s.logger.Info(ctx, "verification code issued", "email", email, "purpose", string(purpose))
	s.logger.Debug(ctx, "verification code value", "code", code)
	return nil
}
