// Copyright 2025 Certen Protocol
//
// WorkerLogRepository: the durable append-only worker tick audit log
// §4.3 requires alongside process logging. Backs pkg/worker.AuditLogger.
package workerlog

import (
	"context"
	"fmt"
	"time"

	gcpfirestore "cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

const collection = "workerTicks"

// Entry is one durable worker-tick record.
type Entry struct {
	EntryID    string
	WorkerName string
	Message    string
	Timestamp  time.Time
}

// Repository is the concrete, Firestore-backed WorkerLogRepository.
type Repository struct {
	client *Client
}

// New builds a Repository over client.
func New(client *Client) *Repository {
	return &Repository{client: client}
}

// LogTick persists one worker-tick entry. A no-op when the underlying
// client is disabled.
func (r *Repository) LogTick(ctx context.Context, workerName, message string) error {
	if !r.client.IsEnabled() {
		return nil
	}

	entry := Entry{
		EntryID:    uuid.NewString(),
		WorkerName: workerName,
		Message:    message,
		Timestamp:  time.Now(),
	}

	docPath := fmt.Sprintf("%s/%s", collection, entry.EntryID)
	_, err := r.client.firestore.Doc(docPath).Set(ctx, map[string]interface{}{
		"workerName": entry.WorkerName,
		"message":    entry.Message,
		"timestamp":  entry.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("log tick: %w", err)
	}
	return nil
}

// RecentTicks returns the most recent limit worker-tick entries for
// workerName, newest first.
func (r *Repository) RecentTicks(ctx context.Context, workerName string, limit int) ([]Entry, error) {
	if !r.client.IsEnabled() {
		return nil, nil
	}

	iter := r.client.firestore.Collection(collection).
		Where("workerName", "==", workerName).
		OrderBy("timestamp", gcpfirestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var out []Entry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("recent ticks: %w", err)
		}
		var data struct {
			WorkerName string    `firestore:"workerName"`
			Message    string    `firestore:"message"`
			Timestamp  time.Time `firestore:"timestamp"`
		}
		if err := doc.DataTo(&data); err != nil {
			return nil, fmt.Errorf("recent ticks: decode: %w", err)
		}
		out = append(out, Entry{EntryID: doc.Ref.ID, WorkerName: data.WorkerName, Message: data.Message, Timestamp: data.Timestamp})
	}
	return out, nil
}
