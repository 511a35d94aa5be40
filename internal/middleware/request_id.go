// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hearsay-labs/feedback-service/internal/logging"
	"github.com/hearsay-labs/feedback-service/pkg/constants"
)

// RequestIDMiddleware attaches a request ID to every request. An inbound
// X-REQUEST-ID header is honored so IDs propagate across services; otherwise
// a fresh UUID is generated. The ID is stored on the context, added to log
// records, and echoed in the response headers.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(constants.RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := context.WithValue(r.Context(), constants.RequestIDContextID, requestID)
			ctx = logging.AppendCtx(ctx, slog.String("request_id", requestID))

			w.Header().Set(constants.RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
