package container

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bplaum/gavl/pkg/codec"
	"github.com/bplaum/gavl/pkg/gavlerr"
	"github.com/bplaum/gavl/pkg/ioh"
	"github.com/bplaum/gavl/pkg/value"
)

// DefaultHandshakeTimeout bounds the socket GET/PUT handshake round
// trip (§6.4's listed config knob).
const DefaultHandshakeTimeout = 10 * time.Second

const protoGAVF = "PROTO-GAVF"

// ProtocolVersion is the PROTO-GAVF/VERSION string advertised in the
// socket handshake (§6.4).
const ProtocolVersion = "1.0"

// MsgRedirect is the GAVF.REDIRECT(uri:string) message a pipe/stdin
// source may send instead of a GAVFPHDR chunk, asking the reader to
// close this handle and reopen at uri (§4.7).
const MsgRedirect int32 = -1

// NewRedirect builds a GAVF.REDIRECT(uri:string) message.
func NewRedirect(uri string) codec.Message {
	return codec.Message{Namespace: NamespaceGAVF, ID: MsgRedirect, Args: []value.Value{
		value.String(uri),
	}}
}

// Reader is an open GAVF source: a handle, its media info, and
// whatever in-band control-message machinery the open mode set up.
type Reader struct {
	Handle *Handle
	Info   *MediaInfo
}

// Handle wraps an *ioh.Handle together with the control-message
// encode/decode helpers the container runtime layers on top of it.
type Handle struct {
	IO *ioh.Handle
}

// ReadMessage decodes one control message from the handle's control
// stream (§6.1's framed in-band messages).
func (h *Handle) ReadMessage() (codec.Message, error) {
	return codec.DecodeMessage(h.IO)
}

// WriteMessage encodes one control message onto the handle.
func (h *Handle) WriteMessage(m codec.Message) error {
	return codec.EncodeMessage(h.IO, m)
}

// OpenRead implements §4.7's open-mode dispatch for reading: disk
// (GAVFPHDR chunk), pipe/stdin (REDIRECT recursion), or socket
// (GET handshake). uri selects the transport the same way
// ioh.OpenRead's forms do; OpenRead additionally understands the
// GAVF-level REDIRECT message on pipe/stdin sources, which
// ioh.OpenRead has no notion of.
func OpenRead(uri string, timeout time.Duration) (*Reader, error) {
	res, err := ioh.OpenRead(uri, timeout)
	if err != nil {
		return nil, err
	}
	h := &Handle{IO: res.Handle}

	if h.IO.Caps.IsSocket {
		if err := clientHandshake(h.IO, uri, timeout); err != nil {
			return nil, err
		}
		return readProgramHeader(h)
	}

	if h.IO.Caps.IsPipe && !h.IO.Caps.CanSeek {
		redirected, ok, err := maybeRedirect(h)
		if err != nil {
			return nil, err
		}
		if ok {
			h.IO.Close()
			return OpenRead(redirected, timeout)
		}
	}

	return readProgramHeader(h)
}

// maybeRedirect peeks the first framed message; if it is a
// REDIRECT(uri:string), it reports the target uri so the caller can
// close this handle and recurse into open_read(uri), per §4.7: "If
// the first framed message is REDIRECT uri, close the pipe and
// recurse into open_read(uri)".
func maybeRedirect(h *Handle) (string, bool, error) {
	tag := make([]byte, ioh.TagSize)
	if _, err := io.ReadFull(h.IO, tag); err != nil {
		return "", false, fmt.Errorf("container: peek first chunk tag: %w", err)
	}
	h.IO.Unread(tag)
	if string(tag) == ioh.TagProgramHeader {
		return "", false, nil
	}
	m, err := h.ReadMessage()
	if err != nil {
		return "", false, fmt.Errorf("container: peek redirect message: %w", err)
	}
	if m.Namespace != NamespaceGAVF || m.ID != MsgRedirect || len(m.Args) < 1 {
		return "", false, gavlerr.New(gavlerr.KindProtocol, "container.OpenRead",
			fmt.Errorf("expected GAVFPHDR or REDIRECT, got namespace %q id %d", m.Namespace, m.ID))
	}
	target, ok := m.Args[0].String()
	if !ok {
		return "", false, gavlerr.New(gavlerr.KindProtocol, "container.OpenRead",
			fmt.Errorf("REDIRECT argument is not a string"))
	}
	return target, true, nil
}

// readProgramHeader reads the GAVFPHDR chunk and deserialises the
// media-info dictionary it carries, then initialises stream
// discovery on every track (§4.7: "Read GAVFPHDR chunk, deserialise
// media-info, initialise streams").
func readProgramHeader(h *Handle) (*Reader, error) {
	hdr, err := ioh.ReadChunkHeader(h.IO)
	if err != nil {
		return nil, fmt.Errorf("container: read program header chunk: %w", err)
	}
	if hdr.Tag != ioh.TagProgramHeader {
		return nil, gavlerr.New(gavlerr.KindProtocol, "container.readProgramHeader",
			fmt.Errorf("expected %s chunk, got %q", ioh.TagProgramHeader, hdr.Tag))
	}
	payload, err := ioh.ReadChunkPayload(h.IO, hdr)
	if err != nil {
		return nil, err
	}
	v, err := codec.DecodeValue(payload)
	if err != nil {
		return nil, fmt.Errorf("container: decode media-info payload: %w", err)
	}
	info, err := MediaInfoFromValue(v)
	if err != nil {
		return nil, err
	}
	for _, t := range info.Tracks {
		t.DiscoverStreams()
	}
	return &Reader{Handle: h, Info: info}, nil
}

// WriteProgramHeader serialises info into a GAVFPHDR chunk on h,
// the write-side counterpart of readProgramHeader.
func WriteProgramHeader(h *Handle, info *MediaInfo) error {
	cw, err := ioh.BeginChunk(h.IO, ioh.TagProgramHeader)
	if err != nil {
		return err
	}
	if err := codec.EncodeValue(cw, info.ToValue()); err != nil {
		return fmt.Errorf("container: encode media-info payload: %w", err)
	}
	return cw.Commit()
}

// clientHandshake issues the GET request of §6.4's socket open mode
// and expects a 200 response: "Client: issue GET /path PROTO-GAVF/
// VERSION, expect 200."
func clientHandshake(h *ioh.Handle, uri string, timeout time.Duration) error {
	path := socketPath(uri)
	line := fmt.Sprintf("GET %s %s/%s\r\n\r\n", path, protoGAVF, ProtocolVersion)
	if _, err := h.Write([]byte(line)); err != nil {
		return fmt.Errorf("container: write GET handshake: %w", err)
	}
	if err := h.Flush(); err != nil {
		return err
	}
	status, err := readStatusLine(h)
	if err != nil {
		return err
	}
	if status != 200 {
		return gavlerr.New(gavlerr.KindTransport, "container.clientHandshake",
			fmt.Errorf("server responded %d", status))
	}
	return nil
}

// ClientPutHandshake is the symmetric write-side handshake: "Write
// symmetric: client issues PUT, expects 100."
func ClientPutHandshake(h *ioh.Handle, uri string) error {
	path := socketPath(uri)
	line := fmt.Sprintf("PUT %s %s/%s\r\n\r\n", path, protoGAVF, ProtocolVersion)
	if _, err := h.Write([]byte(line)); err != nil {
		return fmt.Errorf("container: write PUT handshake: %w", err)
	}
	if err := h.Flush(); err != nil {
		return err
	}
	status, err := readStatusLine(h)
	if err != nil {
		return err
	}
	if status != 100 {
		return gavlerr.New(gavlerr.KindTransport, "container.ClientPutHandshake",
			fmt.Errorf("server responded %d", status))
	}
	return nil
}

// ServeHandshake is the server side of the socket open mode: "Server:
// accept, verify GET and path, respond 200, or reject with 404/405."
// The returned method is the request's verb: GET is answered with 200
// and PUT with 100. Any other verb is rejected with 405, and a path
// other than wantPath with 404, before the caller sees a Reader/Writer.
func ServeHandshake(h *ioh.Handle, wantPath string) (method string, err error) {
	req, err := readRequestLine(h)
	if err != nil {
		return "", err
	}
	if req.path != wantPath {
		writeStatusLine(h, 404)
		return "", gavlerr.New(gavlerr.KindProtocol, "container.ServeHandshake",
			fmt.Errorf("unknown path %q", req.path))
	}
	switch req.method {
	case "GET":
		if err := writeStatusLine(h, 200); err != nil {
			return "", err
		}
	case "PUT":
		if err := writeStatusLine(h, 100); err != nil {
			return "", err
		}
	default:
		writeStatusLine(h, 405)
		return "", gavlerr.New(gavlerr.KindProtocol, "container.ServeHandshake",
			fmt.Errorf("unsupported method %q", req.method))
	}
	return req.method, nil
}

type requestLine struct {
	method string
	path   string
	proto  string
}

func readRequestLine(h *ioh.Handle) (requestLine, error) {
	line, err := readCRLFLine(h)
	if err != nil {
		return requestLine{}, err
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return requestLine{}, gavlerr.New(gavlerr.KindProtocol, "container.readRequestLine",
			fmt.Errorf("malformed request line %q", line))
	}
	rl := requestLine{method: fields[0], path: fields[1]}
	if len(fields) > 2 {
		rl.proto = fields[2]
	}
	if err := drainHeaders(h); err != nil {
		return requestLine{}, err
	}
	return rl, nil
}

func readStatusLine(h *ioh.Handle) (int, error) {
	line, err := readCRLFLine(h)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, gavlerr.New(gavlerr.KindProtocol, "container.readStatusLine",
			fmt.Errorf("malformed status line %q", line))
	}
	var status int
	if _, err := fmt.Sscanf(fields[1], "%d", &status); err != nil {
		return 0, fmt.Errorf("container: parse status code %q: %w", fields[1], err)
	}
	if err := drainHeaders(h); err != nil {
		return 0, err
	}
	return status, nil
}

func writeStatusLine(h *ioh.Handle, code int) error {
	line := fmt.Sprintf("%s/%s %d\r\n\r\n", protoGAVF, ProtocolVersion, code)
	_, err := h.Write([]byte(line))
	if err != nil {
		return err
	}
	return h.Flush()
}

// readCRLFLine reads one CRLF-terminated line through a byte-at-a-time
// scan; the handshake is tiny and infrequent, so this trades
// throughput for not requiring a buffered reader wrapper around
// ioh.Handle's Read contract.
func readCRLFLine(h *ioh.Handle) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := h.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				s := sb.String()
				return strings.TrimSuffix(s, "\r"), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			return "", fmt.Errorf("container: read handshake line: %w", err)
		}
	}
}

// drainHeaders consumes the blank-line-terminated header block
// following a request/status line; the handshake carries no headers
// of its own, so this just finds the boundary.
func drainHeaders(h *ioh.Handle) error {
	for {
		line, err := readCRLFLine(h)
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
	}
}

func socketPath(uri string) string {
	idx := strings.Index(uri, "://")
	if idx < 0 {
		return "/"
	}
	rest := uri[idx+3:]
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return "/"
	}
	return rest[slash:]
}
