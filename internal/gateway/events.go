package gateway

import "encoding/json"

// Op codes for gateway payloads.
const (
	OpDispatch     = 0
	OpHeartbeat    = 1
	OpIdentify     = 2
	OpReconnect    = 7
	OpInvalid      = 9
	OpHello        = 10
	OpHeartbeatAck = 11
)

// Event names for DISPATCH payloads.
const (
	EventReady               = "READY"
	EventChannelCreate       = "CHANNEL_CREATE"
	EventChannelMemberAdd    = "CHANNEL_MEMBER_ADD"
	EventChannelMemberRemove = "CHANNEL_MEMBER_REMOVE"
	EventChannelOwnerAdd     = "CHANNEL_OWNER_ADD"
	EventChannelOwnerRemove  = "CHANNEL_OWNER_REMOVE"
	EventDMCreate            = "DM_CREATE"
	EventDMMemberRemove      = "DM_MEMBER_REMOVE"
	EventDMDelete            = "DM_DELETE"
	EventMessageCreate       = "MESSAGE_CREATE"
	EventMessageUpdate       = "MESSAGE_UPDATE"
	EventMessageDelete       = "MESSAGE_DELETE"
	EventUserUpdate          = "USER_UPDATE"
	EventUserRemove          = "USER_REMOVE"
)

// GatewayPayload is the envelope for all gateway messages.
type GatewayPayload struct {
	Op       int             `json:"op"`
	Data     json.RawMessage `json:"d,omitempty"`
	Sequence *int64          `json:"s,omitempty"`
	Event    *string         `json:"t,omitempty"`
}

// IdentifyData is sent by the client in an Op 2 IDENTIFY.
type IdentifyData struct {
	Token string `json:"token"`
}

// HelloData is sent by the server right after the upgrade.
type HelloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// ReadyData is dispatched after a successful IDENTIFY.
type ReadyData struct {
	ConnectionID string `json:"connection_id"`
	UserID       int64  `json:"user_id"`
}

// MemberEvent describes a membership change in a channel or DM.
type MemberEvent struct {
	ChannelID int64 `json:"channel_id,omitempty"`
	DMID      int64 `json:"dm_id,omitempty"`
	UserID    int64 `json:"user_id"`
}

// MessageEvent identifies a message in a channel or DM.
type MessageEvent struct {
	ChannelID int64  `json:"channel_id,omitempty"`
	DMID      int64  `json:"dm_id,omitempty"`
	MessageID int64  `json:"message_id"`
	Content   string `json:"message,omitempty"`
}
