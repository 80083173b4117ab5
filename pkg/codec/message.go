package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bplaum/gavl/pkg/value"
)

// Message is a control message: a namespace-scoped, identified
// event carrying a fixed argument list (spec §4.2, §6.3).
type Message struct {
	Namespace string
	ID        int32
	Timestamp int64
	Args      []value.Value
}

const (
	msgKeyNamespace = "ns"
	msgKeyID        = "id"
	msgKeyTimestamp = "ts"
	msgKeyArgCount  = "argc"
)

// EncodeMessage writes the dictionary header (namespace, id,
// timestamp, argument count) followed by each argument's value
// encoding.
func EncodeMessage(w io.Writer, m Message) error {
	header := value.NewDictionary()
	header.Set(msgKeyNamespace, value.String(m.Namespace))
	header.Set(msgKeyID, value.Int(m.ID))
	header.Set(msgKeyTimestamp, value.Long(m.Timestamp))
	header.Set(msgKeyArgCount, value.Int(int32(len(m.Args))))

	if err := EncodeDictionary(w, header); err != nil {
		return fmt.Errorf("codec: write message header: %w", err)
	}
	for i, arg := range m.Args {
		if err := EncodeValue(w, arg); err != nil {
			return fmt.Errorf("codec: write message arg %d: %w", i, err)
		}
	}
	return nil
}

// DecodeMessage reads a Message previously written by EncodeMessage.
func DecodeMessage(r io.Reader) (Message, error) {
	header, err := DecodeDictionary(r)
	if err != nil {
		return Message{}, fmt.Errorf("codec: read message header: %w", err)
	}

	var m Message
	if v, ok := header.Get(msgKeyNamespace); ok {
		m.Namespace, _ = v.String()
	}
	if v, ok := header.Get(msgKeyID); ok {
		m.ID, _ = v.Int()
	}
	if v, ok := header.Get(msgKeyTimestamp); ok {
		m.Timestamp, _ = v.Long()
	}

	argc := int32(0)
	if v, ok := header.Get(msgKeyArgCount); ok {
		argc, _ = v.Int()
	}

	m.Args = make([]value.Value, 0, argc)
	for i := int32(0); i < argc; i++ {
		v, err := DecodeValue(r)
		if err != nil {
			return Message{}, fmt.Errorf("codec: read message arg %d: %w", i, err)
		}
		m.Args = append(m.Args, v)
	}
	return m, nil
}

// MessageToPacketBytes serializes m into a byte buffer suitable for
// carrying on a Packet (spec §4.2: "A message converts to a packet by
// serialising into the packet's byte buffer; pts is copied out of the
// header").
func MessageToPacketBytes(m Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeMessage(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MessageFromPacketBytes is the inverse of MessageToPacketBytes.
func MessageFromPacketBytes(b []byte) (Message, error) {
	return DecodeMessage(bytes.NewReader(b))
}
