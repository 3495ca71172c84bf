package http

import (
	"time"

	"github.com/vovakirdan/campuschat-server/internal/core"
	"github.com/vovakirdan/campuschat-server/internal/proto"
	"github.com/vovakirdan/campuschat-server/internal/service/messaging"
	"github.com/vovakirdan/campuschat-server/internal/store"
)

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Body       string `json:"body"`
	Type       string `json:"type"`
	CreatedAt  string `json:"created_at"`
	Read       bool   `json:"read"`
}

// EnrichedMessageResponse is a message with participant names.
type EnrichedMessageResponse struct {
	MessageResponse
	SenderName   string `json:"sender_name"`
	ReceiverName string `json:"receiver_name"`
}

// InboxEntryResponse is one conversation in the inbox list.
type InboxEntryResponse struct {
	CounterpartID   int64                   `json:"counterpart_id"`
	CounterpartName string                  `json:"counterpart_name"`
	Latest          EnrichedMessageResponse `json:"latest"`

	latest store.Message
}

// UnreadResponse is returned by the unread counter endpoint.
type UnreadResponse struct {
	Count     int  `json:"count"`
	HasUnread bool `json:"has_unread"`
}

// BadgeResponse is returned by the badge endpoint.
type BadgeResponse struct {
	HasUnread bool `json:"has_unread"`
}

func messageToResponse(m *store.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Body:       m.Body,
		Type:       string(m.Kind),
		CreatedAt:  m.CreatedAt.Format(time.RFC3339Nano),
		Read:       m.Read,
	}
}

func enrichedToResponse(em *messaging.EnrichedMessage) EnrichedMessageResponse {
	return EnrichedMessageResponse{
		MessageResponse: messageToResponse(&em.Message),
		SenderName:      em.SenderName,
		ReceiverName:    em.ReceiverName,
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	out := proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: event.Kind.String(),
	}

	data := proto.EventNotification{Unread: event.Unread}
	if m := event.Message; m != nil {
		data.Message = &proto.EventMessage{
			ID:         m.ID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Body:       m.Body,
			Type:       string(m.Kind),
			Read:       m.Read,
			TS:         m.CreatedAt.Unix(),
		}
	}
	out.Data = data
	return out
}
