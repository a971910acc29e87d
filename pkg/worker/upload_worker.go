// Copyright 2025 Certen Protocol
//
// Upload Worker (§4.3.1): claims unbundled entities, assembles and
// uploads bundles on a fixed cadence, and periodically sweeps for bundles
// that were assembled but never confirmed on-chain.
package worker

import (
	"context"
	"log"
	"sync"

	"github.com/vaultledger/node/pkg/chainclient"
	"github.com/vaultledger/node/pkg/enginecore"
)

// UploadWorker implements the Upload worker's tick algorithm.
type UploadWorker struct {
	engine  *enginecore.Engine
	uploads chainclient.UploadRepository
	strategy UploadStrategy
	audit   AuditLogger
	logger  *log.Logger

	retryPeriod int

	mu             sync.Mutex
	sequenceNumber int64
	sinceLastRetry int
}

// NewUploadWorker builds an UploadWorker. retryPeriod is in tick units:
// sinceLastRetry grows by one each tick, and the crash-recovery sweep
// (uploadNotRegisteredBundles) runs whenever it has reached retryPeriod.
// The counter is reset to 0 only after a sweep that recovers at least one
// bundle, so sweeps that recover nothing repeat on every following tick.
// sinceLastRetry starts at retryPeriod so the first tick always performs
// the sweep.
func NewUploadWorker(engine *enginecore.Engine, uploads chainclient.UploadRepository, strategy UploadStrategy, audit AuditLogger, retryPeriod int, logger *log.Logger) *UploadWorker {
	if logger == nil {
		logger = log.New(log.Writer(), "[UploadWorker] ", log.LstdFlags)
	}
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &UploadWorker{
		engine:         engine,
		uploads:        uploads,
		strategy:       strategy,
		audit:          audit,
		logger:         logger,
		retryPeriod:    retryPeriod,
		sinceLastRetry: retryPeriod,
	}
}

// Tick runs one Upload worker tick. It is the TickFunc a Periodic wraps.
func (w *UploadWorker) Tick(ctx context.Context) error {
	storagePeriods := w.strategy.StoragePeriods()

	enoughFunds, err := w.uploads.CheckIfEnoughFundsForUpload(ctx, storagePeriods)
	if err != nil {
		ticksTotal.WithLabelValues("upload", "error").Inc()
		return err
	}
	if !enoughFunds {
		w.logger.Println("Insufficient funds for upload")
		ticksTotal.WithLabelValues("upload", "insufficient_funds").Inc()
		return nil
	}

	w.retryUploadIfNecessary(ctx)

	itemsCountLimit, err := w.uploads.BundleItemsCountLimit(ctx)
	if err != nil {
		ticksTotal.WithLabelValues("upload", "error").Inc()
		return err
	}

	w.mu.Lock()
	sequenceNumber := w.sequenceNumber
	w.mu.Unlock()

	bundle, err := w.engine.InitialiseBundling(ctx, sequenceNumber, itemsCountLimit)
	if err != nil {
		ticksTotal.WithLabelValues("upload", "error").Inc()
		return err
	}

	if w.strategy.ShouldBundle(bundle) {
		result, err := w.engine.FinaliseBundling(ctx, bundle, sequenceNumber, storagePeriods)
		if err != nil || result == nil {
			w.logger.Printf("Bundle upload failed: %v", err)
			_ = w.audit.LogTick(ctx, "upload", "bundle upload failed")
			ticksTotal.WithLabelValues("upload", "bundle_failed").Inc()
			return nil
		}
		w.logger.Printf("bundleId=%s", result.BundleID)
		_ = w.audit.LogTick(ctx, "upload", "bundle uploaded: "+result.BundleID)
		w.strategy.BundlingSucceeded(result)
		bundlesUploadedTotal.Inc()
		ticksTotal.WithLabelValues("upload", "bundled").Inc()

		w.mu.Lock()
		w.sequenceNumber++
		w.mu.Unlock()
		return nil
	}

	if err := w.engine.CancelBundling(ctx, sequenceNumber); err != nil {
		return err
	}
	w.logger.Println("Bundling process canceled")
	ticksTotal.WithLabelValues("upload", "canceled").Inc()
	return nil
}

func (w *UploadWorker) retryUploadIfNecessary(ctx context.Context) {
	w.mu.Lock()
	w.sinceLastRetry++
	due := w.sinceLastRetry >= w.retryPeriod
	w.mu.Unlock()

	if !due {
		return
	}

	recovered, err := w.engine.UploadNotRegisteredBundles(ctx)
	if err != nil {
		w.logger.Printf("retry sweep failed: %v", err)
		return
	}
	if len(recovered) > 0 {
		w.logger.Printf("recovered %d unconfirmed bundle(s)", len(recovered))
		_ = w.audit.LogTick(ctx, "upload", "recovered unconfirmed bundles")
		w.mu.Lock()
		w.sinceLastRetry = 0
		w.mu.Unlock()
	}
}
