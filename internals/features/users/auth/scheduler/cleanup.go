package scheduler

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"sfformation_backend/internals/configs"
	authRepo "sfformation_backend/internals/features/users/auth/repository"
)

const cleanupEvery = 24 * time.Hour

// StartBlacklistCleanupScheduler purges blacklist rows older than
// TOKEN_BLACKLIST_TTL_DAYS once a day until ctx is done.
func StartBlacklistCleanupScheduler(ctx context.Context, db *gorm.DB) {
	go func() {
		t := time.NewTicker(cleanupEvery)
		defer t.Stop()
		for {
			runCleanup(ctx, db)
			select {
			case <-ctx.Done():
				log.Println("[CLEANUP] Arrêt du nettoyage token_blacklist")
				return
			case <-t.C:
			}
		}
	}()
}

func runCleanup(ctx context.Context, db *gorm.DB) {
	before := time.Now().Add(-time.Duration(configs.BlacklistTTLDays) * 24 * time.Hour)
	n, err := authRepo.CleanupExpiredBlacklist(ctx, db, before)
	switch {
	case err != nil:
		log.Printf("[CLEANUP ERROR] Échec de la purge token_blacklist: %v", err)
	case n > 0:
		log.Printf("[CLEANUP] %d token(s) expiré(s) supprimé(s)", n)
	default:
		log.Println("[CLEANUP] Aucun token à supprimer")
	}
}
