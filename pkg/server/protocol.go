package server

import (
	"encoding/json"

	"github.com/vango-dev/floatkit/internal/errors"
	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
	"github.com/vango-dev/floatkit/pkg/position"
)

// MessageType tags every frame on the layout-sync socket.
type MessageType string

const (
	// Client to server.
	MessageLayout  MessageType = "layout"
	MessageEvent   MessageType = "event"
	MessageUnmount MessageType = "unmount"

	// Server to client.
	MessageOpen     MessageType = "open"
	MessagePosition MessageType = "position"
	MessagePresence MessageType = "presence"
	MessageError    MessageType = "error"
)

// LayoutNode is one measured element.
type LayoutNode struct {
	ID string `json:"id"`
	// Parent is the nearest ancestor with an id; empty means the body.
	Parent   string       `json:"parent,omitempty"`
	Rect     geom.Rect    `json:"rect"`
	Overflow dom.Overflow `json:"overflow,omitempty"`
}

// Inbound is a client message. Which fields are set depends on Type.
type Inbound struct {
	Type MessageType `json:"type"`

	// layout
	Viewport *geom.Rect  `json:"viewport,omitempty"`
	Nodes    []LayoutNode `json:"nodes,omitempty"`
	// Full marks Nodes as the complete tree: mirrored nodes missing from it
	// are detached.
	Full bool `json:"full,omitempty"`

	// event
	Target  string `json:"target,omitempty"`
	Event   string `json:"event,omitempty"`
	Key     string `json:"key,omitempty"`
	Related string `json:"related,omitempty"`

	// unmount
	Tooltip string `json:"tooltip,omitempty"`
}

// PositionPayload is the placement of one floating element.
type PositionPayload struct {
	X         float64             `json:"x"`
	Y         float64             `json:"y"`
	Placement string              `json:"placement"`
	Strategy  position.Strategy   `json:"strategy"`
	Visible   bool                `json:"visible"`
	MaxHeight *float64            `json:"maxHeight,omitempty"`
	Arrow     *position.ArrowData `json:"arrow,omitempty"`
	Escaped   bool                `json:"escaped,omitempty"`
}

// Outbound is a server message.
type Outbound struct {
	Type    MessageType `json:"type"`
	Tooltip string      `json:"tooltip,omitempty"`

	// open
	Open   *bool  `json:"open,omitempty"`
	Phase  string `json:"phase,omitempty"`
	Reason string `json:"reason,omitempty"`

	// position
	Position *PositionPayload `json:"position,omitempty"`

	// presence
	Mounted *bool  `json:"mounted,omitempty"`
	HTML    string `json:"html,omitempty"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// DecodeInbound parses a client frame. Malformed JSON and unknown types are
// F030 errors.
func DecodeInbound(data []byte) (Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return Inbound{}, errors.New("F030").Wrap(err)
	}
	switch msg.Type {
	case MessageLayout, MessageEvent, MessageUnmount:
		return msg, nil
	case "":
		return Inbound{}, errors.New("F030").WithDetail("message has no type")
	default:
		return Inbound{}, errors.New("F030").WithDetail("unknown message type " + string(msg.Type))
	}
}

func positionMessage(id string, res position.Result, maxHeight *float64) Outbound {
	p := &PositionPayload{
		X:         res.X,
		Y:         res.Y,
		Placement: res.Placement.String(),
		Strategy:  res.Strategy,
		Visible:   res.Visible(),
		MaxHeight: maxHeight,
		Arrow:     res.MiddlewareData.Arrow,
	}
	if h := res.MiddlewareData.Hide; h != nil {
		p.Escaped = h.Escaped
	}
	return Outbound{Type: MessagePosition, Tooltip: id, Position: p}
}

func errorMessage(err error) Outbound {
	fe := errors.FromError(err, "F030")
	return Outbound{Type: MessageError, Code: fe.Code, Message: fe.Error()}
}
