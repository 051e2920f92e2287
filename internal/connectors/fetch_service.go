package connectors

import (
	"context"

	"go.uber.org/zap"

	"pga/internal/logging"
)

type FetchService struct {
	connector MailConnector
	store     *MailStore
	logger    *zap.Logger
}

type FetchResult struct {
	Fetched int
	// New holds the messages that had not been stored before this fetch.
	New []StoredMessage
}

func NewFetchService(connector MailConnector, store *MailStore, logger *zap.Logger) *FetchService {
	return &FetchService{
		connector: connector,
		store:     store,
		logger:    logging.OrNop(logger),
	}
}

func (s *FetchService) FetchAndStore(ctx context.Context, label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(ctx, label, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		stored, isNew, err := s.store.Store(msg)
		if err != nil {
			return result, err
		}
		if !isNew {
			s.logger.Debug("message already stored",
				zap.String("provider", msg.Provider),
				zap.String("message_id", msg.MessageID),
			)
			continue
		}
		result.New = append(result.New, stored)
	}
	return result, nil
}
