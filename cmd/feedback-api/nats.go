// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/hearsay-labs/feedback-service/internal/domain"
	"github.com/hearsay-labs/feedback-service/internal/domain/models"
	"github.com/hearsay-labs/feedback-service/internal/infrastructure/messaging"
	"github.com/hearsay-labs/feedback-service/internal/infrastructure/store"
	"github.com/hearsay-labs/feedback-service/internal/logging"
)

// repositories bundles the concrete NATS KV repositories for the service.
type repositories struct {
	Feedback        *store.NatsFeedbackRepository
	TranscriptEntry *store.NatsTranscriptEntryRepository
	AnalysisResult  *store.NatsAnalysisResultRepository
	Conversation    *store.NatsConversationRepository
	GeneratedAgent  *store.NatsGeneratedAgentRepository
}

// setupNATS connects to the NATS server with graceful close handling.
func setupNATS(_ context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.With("nats_url", env.NatsURL).Info("NATS connection established")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
				return
			}
			slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.Info("NATS connection closed")
			gracefulCloseWG.Done()
			done <- os.Interrupt
		}),
	)
	if err != nil {
		return nil, err
	}

	// The closed handler decrements this during shutdown.
	gracefulCloseWG.Add(1)

	return natsConn, nil
}

// getKeyValueStores opens (creating if absent) the KV buckets and wraps them
// in the service repositories.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	buckets := map[string]jetstream.KeyValue{}
	for _, bucket := range []string{
		store.KVStoreNameFeedback,
		store.KVStoreNameTranscriptEntries,
		store.KVStoreNameAnalysisResults,
		store.KVStoreNameConversations,
		store.KVStoreNameGeneratedAgents,
	} {
		kv, err := js.KeyValue(ctx, bucket)
		if errors.Is(err, jetstream.ErrBucketNotFound) {
			kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
		}
		if err != nil {
			slog.With(logging.ErrKey, err, "bucket", bucket).Error("error opening KV bucket")
			return nil, err
		}
		buckets[bucket] = kv
	}

	return &repositories{
		Feedback:        store.NewNatsFeedbackRepository(buckets[store.KVStoreNameFeedback]),
		TranscriptEntry: store.NewNatsTranscriptEntryRepository(buckets[store.KVStoreNameTranscriptEntries]),
		AnalysisResult:  store.NewNatsAnalysisResultRepository(buckets[store.KVStoreNameAnalysisResults]),
		Conversation:    store.NewNatsConversationRepository(buckets[store.KVStoreNameConversations]),
		GeneratedAgent:  store.NewNatsGeneratedAgentRepository(buckets[store.KVStoreNameGeneratedAgents]),
	}, nil
}

// createNatsSubscriptions subscribes the reconciliation handler to the
// webhook event subjects. The queue group ensures one instance handles each
// event.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	subjects := []string{
		models.LiveKitWebhookParticipantJoinedSubject,
		models.LiveKitWebhookRoomFinishedSubject,
	}

	for _, subject := range subjects {
		_, err := natsConn.QueueSubscribe(subject, models.LiveKitWebhookQueue, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, messaging.NewNatsMsg(msg))
		})
		if err != nil {
			slog.With(logging.ErrKey, err, "subject", subject).Error("error subscribing to NATS subject")
			return err
		}
		slog.With("subject", subject, "queue", models.LiveKitWebhookQueue).Debug("subscribed to NATS subject")
	}

	return nil
}
