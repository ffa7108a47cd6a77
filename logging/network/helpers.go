package network

import (
	"context"

	"duskhollow/server/logging"
)

const (
	// EventConnectionOpened is emitted when a transport link is registered.
	EventConnectionOpened logging.EventType = "network.connection_opened"
	// EventConnectionClosed is emitted when a transport link is removed.
	EventConnectionClosed logging.EventType = "network.connection_closed"
	// EventMessageDropped is emitted for protocol errors and throttled input.
	EventMessageDropped logging.EventType = "network.message_dropped"
	// EventAuthFailed is emitted for credential and token failures.
	EventAuthFailed logging.EventType = "network.auth_failed"
)

type MessageDroppedPayload struct {
	MessageType string `json:"messageType,omitempty"`
	Reason      string `json:"reason"`
}

type AuthFailedPayload struct {
	Username string `json:"username,omitempty"`
	Reason   string `json:"reason"`
	Locked   bool   `json:"locked,omitempty"`
}

func ConnectionOpened(ctx context.Context, pub logging.Publisher, tick uint64, connID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventConnectionOpened,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: connID, Kind: logging.EntityKindUnknown},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
	})
}

func ConnectionClosed(ctx context.Context, pub logging.Publisher, tick uint64, connID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventConnectionClosed,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: connID, Kind: logging.EntityKindUnknown},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
	})
}

func MessageDropped(ctx context.Context, pub logging.Publisher, tick uint64, connID string, payload MessageDroppedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMessageDropped,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: connID, Kind: logging.EntityKindUnknown},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

func AuthFailed(ctx context.Context, pub logging.Publisher, tick uint64, connID string, payload AuthFailedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAuthFailed,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: connID, Kind: logging.EntityKindUnknown},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryAuth,
		Payload:  payload,
	})
}
