package mailer

import (
	"context"

	"github.com/nvoss/outreacher/internal/logger"

	"go.uber.org/zap"
)

const dryRunPreviewLength = 200

// DryRun logs what would have been sent and reports success. Dispatch still
// runs every gate and state update, so the full decision pipeline can be
// validated without transmitting mail.
type DryRun struct {
	Logger *zap.Logger
}

func (d *DryRun) Send(_ context.Context, msg *Message) error {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("dry run, skipping transmission",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body_preview", logger.TruncateForLog(msg.Body, dryRunPreviewLength)),
		zap.String("attachment", msg.AttachmentPath),
	)

	return nil
}
