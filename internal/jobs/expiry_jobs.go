package jobs

import (
	"context"
	"time"

	"github.com/whytehoux-projecty/MIS/internal/logger"
)

// ExpireLapsedInvitations marks interest requests whose invitation window has
// closed without redemption as EXPIRED.
func (jr *JobRunner) ExpireLapsedInvitations() {
	jr.runWithRecovery("ExpireLapsedInvitations", func() {
		ctx := context.Background()
		n, err := jr.store.InterestRequests.ExpireWithLapsedInvitations(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to expire lapsed invitations", "error", err)
			return
		}
		if n > 0 {
			logger.Info("Expired interest requests with lapsed invitations", "count", n)
		}
	})
}

// ExpireQRSessions marks lapsed QR login sessions as expired for reporting.
func (jr *JobRunner) ExpireQRSessions() {
	jr.runWithRecovery("ExpireQRSessions", func() {
		ctx := context.Background()
		n, err := jr.store.QRSessions.MarkExpired(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to expire qr sessions", "error", err)
			return
		}
		if n > 0 {
			logger.Debug("Expired qr sessions", "count", n)
		}
	})
}

// ExpireStaleInfoRequests expires applications that have sat in
// INFO_REQUESTED longer than the configured maximum.
func (jr *JobRunner) ExpireStaleInfoRequests() {
	jr.runWithRecovery("ExpireStaleInfoRequests", func() {
		ctx := context.Background()
		cutoff := time.Now().UTC().AddDate(0, 0, -jr.config.Scheduler.InfoRequestMaxDays)
		n, err := jr.store.InterestRequests.ExpireInfoRequestedBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to expire stale info requests", "error", err)
			return
		}
		if n > 0 {
			logger.Info("Expired stale info requests", "count", n, "cutoff", cutoff)
		}
	})
}
