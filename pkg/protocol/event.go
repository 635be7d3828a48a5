package protocol

// Event is a client → server event fired on a node the server listens to.
//
//	[ID: varint][Name: string][Detail: string]
//
// Detail is event-specific; the bundled client sends the target's value
// for input and change events and an empty string otherwise.
type Event struct {
	ID     uint64
	Name   string
	Detail string
}

// EncodeEvent encodes ev as an event payload.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteUvarint(ev.ID)
	e.WriteString(ev.Name)
	e.WriteString(ev.Detail)
	return e.Bytes()
}

// DecodeEvent decodes an event payload.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	var (
		ev  Event
		err error
	)
	if ev.ID, err = d.ReadUvarint(); err != nil {
		return nil, malformed("event node id", err)
	}
	if ev.Name, err = d.ReadString(); err != nil {
		return nil, malformed("event name", err)
	}
	if ev.Detail, err = d.ReadString(); err != nil {
		return nil, malformed("event detail", err)
	}
	return &ev, nil
}
