package net

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"CollabBoard/internal/logging"
)

// envelope tags a frame with the host that published it.
type envelope struct {
	Origin  string `json:"origin"`
	Payload []byte `json:"payload"`
}

// RedisFanout shares a session between hosts over a redis channel.
type RedisFanout struct {
	client  *redis.Client
	channel string
	origin  string
	logger  logging.Logger
}

// NewRedisFanout connects to the redis server at url and checks it answers.
func NewRedisFanout(ctx context.Context, url, session string, logger logging.Logger) (*RedisFanout, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisFanout{
		client:  client,
		channel: ChannelName(session),
		origin:  uuid.NewString(),
		logger:  logger,
	}, nil
}

// ChannelName returns the redis channel of a session.
func ChannelName(session string) string {
	if session == "" {
		session = "default"
	}
	return "collabboard:" + session
}

// Publish sends frame to the other hosts.
func (f *RedisFanout) Publish(ctx context.Context, frame []byte) error {
	b, err := json.Marshal(envelope{Origin: f.origin, Payload: frame})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel, b).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", f.channel, err)
	}
	return nil
}

// Subscribe delivers the frames of other hosts until ctx is done.
func (f *RedisFanout) Subscribe(ctx context.Context, deliver func(frame []byte)) error {
	sub := f.client.Subscribe(ctx, f.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", f.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if frame, ok := f.unwrap(msg.Payload); ok {
				deliver(frame)
			}
		}
	}
}

func (f *RedisFanout) unwrap(payload string) ([]byte, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		f.logger.Warnf("skip fanout message: %v", err)
		return nil, false
	}
	return env.Payload, env.Origin != f.origin
}

// Close closes the redis connection.
func (f *RedisFanout) Close() error {
	return f.client.Close()
}
