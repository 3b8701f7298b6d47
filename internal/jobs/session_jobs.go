package jobs

import (
	"context"

	"medilink-client/internal/logger"
)

// CheckSessionExpiry ends the session when its token expired since the last check
func (jr *JobRunner) CheckSessionExpiry() {
	jr.runWithRecovery("CheckSessionExpiry", func(ctx context.Context) {
		if jr.session.RecheckExpiry(ctx) {
			logger.Info("Session expired, signed out")
		}
	})
}

// RefreshInventory re-fetches equipment, dropping any pending local edits
func (jr *JobRunner) RefreshInventory() {
	jr.runWithRecovery("RefreshInventory", func(ctx context.Context) {
		if err := jr.inventory.Refresh(ctx); err != nil {
			logger.Error("Failed to refresh inventory", "error", err)
		}
	})
}
