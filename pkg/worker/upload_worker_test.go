// Copyright 2025 Certen Protocol
package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/vaultledger/node/pkg/chainclient"
	"github.com/vaultledger/node/pkg/entity"
	"github.com/vaultledger/node/pkg/entity/schema"
	"github.com/vaultledger/node/pkg/enginecore"
	"github.com/vaultledger/node/pkg/identity"
)

var errFundsCheck = errors.New("funds check failed")

// newUnreachableEngine builds an Engine whose repo-touching methods are
// never exercised by the cases below: Tick returns before
// InitialiseBundling whenever funds are insufficient.
func newUnreachableEngine(t *testing.T) *enginecore.Engine {
	t.Helper()
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)
	validator := entity.New(schema.Predefined(), identity.Default)
	return enginecore.New(nil, validator, nil, nil, nil, nil, secret)
}

func TestUploadWorker_Tick_InsufficientFunds(t *testing.T) {
	engine := newUnreachableEngine(t)
	uploads := &chainclient.FakeUploadRepository{EnoughFunds: false}
	strategy := &DefaultUploadStrategy{Periods: 1}

	w := NewUploadWorker(engine, uploads, strategy, NopAuditLogger{}, 10, nil)
	require.NoError(t, w.Tick(context.Background()))
	require.Empty(t, uploads.Uploaded)
}

func TestUploadWorker_Tick_CheckFundsErrorPropagates(t *testing.T) {
	engine := newUnreachableEngine(t)
	uploads := &erroringFundsCheck{}
	strategy := &DefaultUploadStrategy{Periods: 1}

	w := NewUploadWorker(engine, uploads, strategy, NopAuditLogger{}, 10, nil)
	require.Error(t, w.Tick(context.Background()))
}

// erroringFundsCheck fails CheckIfEnoughFundsForUpload so Tick returns
// before ever touching the engine's repository-backed methods.
type erroringFundsCheck struct{}

func (erroringFundsCheck) CheckIfEnoughFundsForUpload(ctx context.Context, storagePeriods int) (bool, error) {
	return false, errFundsCheck
}
func (erroringFundsCheck) BundleItemsCountLimit(ctx context.Context) (int, error) { return 100, nil }
func (erroringFundsCheck) UploadBundle(ctx context.Context, bundleID string, storagePeriods int) (int64, string, error) {
	return 0, "", nil
}

func TestUploadWorker_RetryUploadIfNecessary_FirstTickAlwaysSweeps(t *testing.T) {
	engine := newUnreachableEngine(t)
	uploads := &chainclient.FakeUploadRepository{EnoughFunds: true}
	strategy := &DefaultUploadStrategy{Periods: 1}

	w := NewUploadWorker(engine, uploads, strategy, NopAuditLogger{}, 10, nil)
	require.Equal(t, 10, w.retryPeriod)
	require.Equal(t, 10, w.sinceLastRetry)
}
