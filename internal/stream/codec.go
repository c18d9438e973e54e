// Package stream implements the multiplexed WebSocket protocol used by
// the charting upstream: length-prefixed framing ("~m~<len>~m~<payload>"),
// method-discriminated JSON packets, and a per-request session manager.
// The codec is independent of any socket so it can be tested against
// literal fixtures.
package stream

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const frameDelim = "~m~"

// Encode wraps one payload in the length-prefixed framing.
func Encode(payload string) string {
	return fmt.Sprintf("%s%d%s%s", frameDelim, len(payload), frameDelim, payload)
}

// EncodePacket frames a method call with positional params.
func EncodePacket(method string, params ...any) (string, error) {
	body, err := json.Marshal(struct {
		Method string `json:"m"`
		Params []any  `json:"p"`
	}{Method: method, Params: params})
	if err != nil {
		return "", err
	}
	return Encode(string(body)), nil
}

// Decode splits one raw frame into its payloads. A frame may carry zero
// or more packets; garbage between markers is skipped rather than
// failing the whole frame.
func Decode(frame string) []string {
	var out []string
	for len(frame) > 0 {
		if !strings.HasPrefix(frame, frameDelim) {
			break
		}
		rest := frame[len(frameDelim):]
		end := strings.Index(rest, frameDelim)
		if end < 0 {
			break
		}
		n, err := strconv.Atoi(rest[:end])
		if err != nil || n < 0 {
			break
		}
		body := rest[end+len(frameDelim):]
		if len(body) < n {
			break
		}
		out = append(out, body[:n])
		frame = body[n:]
	}
	return out
}

// Heartbeat payloads look like "~h~123" and must be echoed verbatim.
func IsHeartbeat(payload string) bool {
	return strings.HasPrefix(payload, "~h~")
}

// Packet is one decoded protocol message. Payloads that are not
// method-shaped JSON (heartbeats, bare numbers) are not packets.
type Packet struct {
	Method string            `json:"m"`
	Params []json.RawMessage `json:"p"`
}

// ParsePacket decodes a payload into a Packet, reporting whether the
// payload was method-shaped.
func ParsePacket(payload string) (*Packet, bool) {
	if !strings.HasPrefix(payload, "{") {
		return nil, false
	}
	var p Packet
	if err := json.Unmarshal([]byte(payload), &p); err != nil || p.Method == "" {
		return nil, false
	}
	return &p, true
}
