// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

// Package main is the feedback service API. It serves the RESTful API for
// feedback agents and call sessions, receives LiveKit webhooks, and runs the
// NATS consumers that reconcile finished calls into analyses.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hearsay-labs/feedback-service/internal/infrastructure/gemini"
	"github.com/hearsay-labs/feedback-service/internal/infrastructure/livekit"
	"github.com/hearsay-labs/feedback-service/internal/infrastructure/messaging"
	"github.com/hearsay-labs/feedback-service/internal/logging"
	"github.com/hearsay-labs/feedback-service/internal/service"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Initialize LiveKit and Gemini integrations. Neither needs a network
	// round trip at startup.
	webhookVerifier := livekit.NewWebhookVerifier(env.LiveKit.APIKey, env.LiveKit.APISecret)
	tokenProvider := livekit.NewTokenProvider(env.LiveKit.APIKey, env.LiveKit.APISecret)
	geminiClient := gemini.NewClient(gemini.Config{
		APIKey: env.Gemini.APIKey,
		Model:  env.Gemini.Model,
	})

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize services
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	webhookService := service.NewLiveKitWebhookService(messageBuilder)
	analysisService := service.NewAnalysisService(
		repos.Feedback,
		repos.TranscriptEntry,
		repos.AnalysisResult,
		geminiClient,
	)
	reconciliationService := service.NewReconciliationService(
		repos.Feedback,
		repos.TranscriptEntry,
		analysisService,
	)
	conversationService := service.NewConversationService(
		repos.Conversation,
		repos.GeneratedAgent,
		geminiClient,
	)
	callSessionService := service.NewCallSessionService(
		repos.Conversation,
		repos.Feedback,
		tokenProvider,
		env.LiveKit.ServerURL,
	)
	feedbackService := service.NewFeedbackService(
		repos.Feedback,
		repos.TranscriptEntry,
		repos.AnalysisResult,
		geminiClient,
	)

	api := NewFeedbackAPI(
		webhookVerifier,
		webhookService,
		conversationService,
		callSessionService,
		feedbackService,
		reconciliationService,
		natsConn,
	)

	httpServer := setupHTTPServer(flags, api, &gracefulCloseWG)

	// Create NATS subscriptions for the webhook event consumers.
	err = createNatsSubscriptions(ctx, reconciliationService, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}
