package notify

import "github.com/arloliu/shadowslot/types"

// Message is the JSON body NATSPublisher publishes for one batch.
type Message struct {
	// Instance identifies the publishing process.
	Instance string `json:"instance"`

	// Sequence increases by one per published batch of this publisher.
	Sequence uint64 `json:"sequence"`

	// Notifications holds the batch, sorted by name.
	Notifications []Payload `json:"notifications"`
}

// Payload is the wire form of one notification.
type Payload struct {
	Name  string         `json:"name"`
	Slot  *types.NodeID  `json:"slot,omitempty"`
	Nodes []types.NodeID `json:"nodes"`
}

func payloadOf(n types.Notification) Payload {
	p := Payload{Name: n.Name, Nodes: n.Nodes}
	if id, ok := n.SlotID(); ok {
		p.Slot = &id
	}
	if p.Nodes == nil {
		p.Nodes = []types.NodeID{}
	}

	return p
}
