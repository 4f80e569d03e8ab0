package live

import (
	"bytes"
	"encoding/json"

	"github.com/vango-dev/statebind/pkg/host"
)

// Frame types sent to clients.
const (
	FrameRender = "render"
	FrameResult = "result"
	FrameError  = "error"
)

// Request is one client message. Exactly one of Call or Assign is set.
type Request struct {
	Seq    uint64      `json:"seq,omitempty"`
	Call   string      `json:"call,omitempty"`
	Args   []any       `json:"args,omitempty"`
	Assign *Assignment `json:"assign,omitempty"`
}

// Assignment writes a prop from the client side.
type Assignment struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Frame is one server message.
type Frame struct {
	Type     string         `json:"type"`
	Seq      uint64         `json:"seq,omitempty"`
	Snapshot *host.Snapshot `json:"snapshot,omitempty"`
	Result   any            `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// decodeRequest parses msg. Integral numbers decode as int so they can be
// stored into int containers; other numbers decode as float64.
func decodeRequest(msg []byte) (Request, error) {
	var req Request
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return Request{}, err
	}
	for i, a := range req.Args {
		req.Args[i] = normalize(a)
	}
	if req.Assign != nil {
		req.Assign.Value = normalize(req.Assign.Value)
	}
	return req, nil
}

func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalize(x[k])
		}
		return x
	default:
		return v
	}
}
