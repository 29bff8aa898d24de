package main

import (
	"context"
	"log"
	"time"

	"marketBack/internal/config"
	"marketBack/internal/services"
)

const offerExpiryTimeout = time.Minute

// startOfferExpiry periodically expires pending offers older than
// cfg.ExpireAfter. A zero ExpireAfter disables it.
func startOfferExpiry(ctx context.Context, svc *services.OfferService, cfg config.OffersConfig, infoLog, errorLog *log.Logger) {
	if svc == nil || cfg.ExpireAfter <= 0 {
		return
	}
	interval := cfg.ExpiryInterval
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, offerExpiryTimeout)
			expired, err := svc.ExpireStaleOffers(runCtx, cfg.ExpireAfter)
			cancel()
			if err != nil {
				errorLog.Printf("offer expiry: %v", err)
			} else if expired > 0 {
				infoLog.Printf("offer expiry: expired %d pending offers", expired)
			}
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
