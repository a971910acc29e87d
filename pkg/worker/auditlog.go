// Copyright 2025 Certen Protocol
package worker

import "context"

// AuditLogger durably records one worker-tick event, independent of the
// process logger (§4.3: "structured logs emitted both to the logger and
// to a durable workerLogRepository"). pkg/workerlog backs this with
// Firestore; tests substitute a no-op or in-memory fake.
type AuditLogger interface {
	LogTick(ctx context.Context, workerName, message string) error
}

// NopAuditLogger discards every entry. Used when no durable audit log is
// configured.
type NopAuditLogger struct{}

func (NopAuditLogger) LogTick(ctx context.Context, workerName, message string) error { return nil }
