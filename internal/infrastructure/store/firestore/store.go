package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
)

const collection = "agent_calls"

var _ output.StorePort = (*Store)(nil)

// Store persists one document per generate-note invocation, keyed by request
// ID so retries overwrite rather than duplicate.
type Store struct {
	client *firestore.Client
	logger output.LoggerPort
}

func NewStore(ctx context.Context, projectID string, logger output.LoggerPort) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Store{client: client, logger: logger}, nil
}

func (s *Store) Save(ctx context.Context, record entity.AgentCallRecord) error {
	if record.RequestID == "" {
		return fmt.Errorf("record has no request id")
	}
	_, err := s.client.Collection(collection).Doc(record.RequestID).Set(ctx, record)
	if err != nil {
		return fmt.Errorf("save agent call %s: %w", record.RequestID, err)
	}
	s.logger.Debug("Agent call persisted", "requestId", record.RequestID)
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
