// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

//go:build nats

package events

import (
	"fmt"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/clusterrec/internal/config"
	"github.com/tomtom215/clusterrec/internal/logging"
)

// newNATSPublisher connects a JetStream publisher to cfg.URL, starting an
// embedded server first when cfg.EmbeddedServer is set. The returned
// closer stops the embedded server and is nil otherwise. The stream
// holding topic is created if missing.
func newNATSPublisher(cfg config.NATSConfig, topic string, logger watermill.LoggerAdapter) (message.Publisher, func() error, error) {
	url := cfg.URL
	var stop func() error

	if cfg.EmbeddedServer {
		ns, err := startEmbeddedServer(cfg)
		if err != nil {
			return nil, nil, err
		}
		url = ns.ClientURL()
		stop = func() error {
			ns.Shutdown()
			ns.WaitForShutdown()
			return nil
		}
	}

	if err := ensureStream(url, topic); err != nil {
		if stop != nil {
			_ = stop()
		}
		return nil, nil, err
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("clusterrec"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		natsgo.ErrorHandler(func(_ *natsgo.Conn, sub *natsgo.Subscription, err error) {
			event := logging.Error().Err(err)
			if sub != nil {
				event = event.Str("subject", sub.Subject)
			}
			event.Msg("NATS async error")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		if stop != nil {
			_ = stop()
		}
		return nil, nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	logging.Info().Str("url", url).Bool("embedded", cfg.EmbeddedServer).Msg("NATS publisher connected")
	return pub, stop, nil
}

func startEmbeddedServer(cfg config.NATSConfig) (*server.Server, error) {
	if cfg.StoreDir != "" {
		if err := os.MkdirAll(cfg.StoreDir, 0o750); err != nil {
			return nil, fmt.Errorf("create JetStream store dir: %w", err)
		}
	}

	opts := &server.Options{
		ServerName:         "clusterrec-embedded",
		Host:               "127.0.0.1",
		Port:               server.RANDOM_PORT,
		JetStream:          true,
		StoreDir:           cfg.StoreDir,
		JetStreamMaxMemory: cfg.MaxMemory,
		JetStreamMaxStore:  cfg.MaxStore,
		MaxPayload:         8 * 1024 * 1024,
		NoSigs:             true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded NATS server: %w", err)
	}
	ns.ConfigureLogger()
	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready within 30s")
	}
	logging.Info().Str("url", ns.ClientURL()).Str("store_dir", cfg.StoreDir).Msg("Embedded NATS server started")
	return ns, nil
}

// StreamName is the JetStream stream run events are stored in.
const StreamName = "CLUSTERREC_EVENTS"

func ensureStream(url, topic string) error {
	nc, err := natsgo.Connect(url, natsgo.Timeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		return fmt.Errorf("open JetStream context: %w", err)
	}
	if _, err := js.StreamInfo(StreamName); err == nil {
		return nil
	}
	_, err = js.AddStream(&natsgo.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{topic},
		Storage:    natsgo.FileStorage,
		Retention:  natsgo.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 10 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", StreamName, err)
	}
	logging.Info().Str("stream", StreamName).Str("subject", topic).Msg("JetStream stream created")
	return nil
}
