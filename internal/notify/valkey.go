package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"
)

// DefaultChannel is the pub/sub channel notifications are published on.
const DefaultChannel = "rbacadmin:notifications"

// Valkey publishes notifications as JSON on a Valkey pub/sub channel so other
// operators' terminals or dashboards can follow changes.
type Valkey struct {
	client  valkey.Client
	channel string
	owned   bool
}

// NewValkey connects to addr and verifies the connection with PING.
func NewValkey(addr, channel string) (*Valkey, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{addr},
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	v := NewValkeyWithClient(client, channel)
	v.owned = true
	slog.Debug("Valkey notifier connected", "address", addr, "channel", v.channel)
	return v, nil
}

// NewValkeyWithClient wraps an existing client.
func NewValkeyWithClient(client valkey.Client, channel string) *Valkey {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Valkey{client: client, channel: channel}
}

func (v *Valkey) Notify(ctx context.Context, note Notification) {
	payload, err := json.Marshal(note)
	if err != nil {
		slog.Warn("Failed to encode notification", "error", err)
		return
	}
	cmd := v.client.B().Publish().Channel(v.channel).Message(string(payload)).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		// A missing feed must not turn a successful mutation into a failure.
		slog.Warn("Failed to publish notification to Valkey", "channel", v.channel, "error", err)
	}
}

// Close releases the client if NewValkey created it.
func (v *Valkey) Close() {
	if v.owned {
		v.client.Close()
	}
}
