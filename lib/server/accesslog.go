// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"io"
	"log/slog"
	"time"

	"github.com/gorilla/handlers"
)

// accessLogFormatter routes gorilla access log entries through slog.
// The writer handed to the formatter is unused.
func accessLogFormatter(logger *slog.Logger) handlers.LogFormatter {
	return func(_ io.Writer, params handlers.LogFormatterParams) {
		logger.Info("http request",
			"method", params.Request.Method,
			"path", params.URL.Path,
			"status", params.StatusCode,
			"bytes", params.Size,
			"remote", params.Request.RemoteAddr,
			"duration", time.Since(params.TimeStamp),
		)
	}
}
