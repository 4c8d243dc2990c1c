package utils

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const verificationBatchSize = 50

// VerificationResender resends verification emails whose first delivery failed.
type VerificationResender interface {
	ResendPendingVerifications(ctx context.Context, batch int) (int, error)
}

// logScheduler logs scheduler events with timestamp
func logScheduler(message string, args ...any) {
	log.Printf("[VERIFY-SCHEDULER %s] "+message, append([]any{time.Now().Format(time.RFC3339)}, args...)...)
}

// RunVerificationRetry performs one resend pass.
func RunVerificationRetry(ctx context.Context, resender VerificationResender) {
	sent, err := resender.ResendPendingVerifications(ctx, verificationBatchSize)
	if err != nil {
		logScheduler("Error fetching pending verification emails: %v", err)
		return
	}
	if sent > 0 {
		logScheduler("Resent %d verification email(s)", sent)
	}
}

// InitializeVerificationScheduler starts the cron job that retries failed
// verification emails on schedule. Stop the returned cron on shutdown.
func InitializeVerificationScheduler(schedule string, resender VerificationResender) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(schedule, func() {
		RunVerificationRetry(context.Background(), resender)
	}); err != nil {
		return nil, err
	}

	c.Start()
	logScheduler("Verification email retry scheduled (%s)", schedule)
	return c, nil
}
