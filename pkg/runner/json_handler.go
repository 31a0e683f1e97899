package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
)

// JSONHandler writes one JSON object per line: a begin record, one record per
// step, then the summary.
type JSONHandler struct {
	Encoder *json.Encoder
}

// NewJSONHandler creates a JSON-lines handler. A nil writer means Stdout.
func NewJSONHandler(w io.Writer) *JSONHandler {
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{Encoder: json.NewEncoder(w)}
}

type jsonRecord struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (h *JSONHandler) Begin(ctx context.Context, scenario string, requests int) error {
	return h.Encoder.Encode(jsonRecord{Type: "begin", Data: map[string]any{
		"scenario": scenario,
		"requests": requests,
	}})
}

func (h *JSONHandler) Step(ctx context.Context, s Step) error {
	return h.Encoder.Encode(jsonRecord{Type: "step", Data: s})
}

func (h *JSONHandler) End(ctx context.Context, sum Summary) error {
	return h.Encoder.Encode(jsonRecord{Type: "summary", Data: sum})
}
