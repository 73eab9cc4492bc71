// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

//go:build !nats

package events

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/clusterrec/internal/config"
)

// ErrNATSNotCompiled is returned when the nats backend is selected in a
// build without the nats tag.
var ErrNATSNotCompiled = errors.New("NATS events backend not available: build with -tags=nats")

func newNATSPublisher(_ config.NATSConfig, _ string, _ watermill.LoggerAdapter) (message.Publisher, func() error, error) {
	return nil, nil, ErrNATSNotCompiled
}
