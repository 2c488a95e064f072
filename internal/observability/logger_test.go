package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/geocoder89/agenda/internal/actorctx"
)

func TestLogger_StampsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	ctx := actorctx.WithRequestID(context.Background(), "req-42")
	log.InfoContext(ctx, "hello", "k", "v")
	log.DebugContext(ctx, "hidden outside dev")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected exactly one JSON record, got %q: %v", buf.String(), err)
	}

	if rec["request_id"] != "req-42" || rec["service"] != "agenda-api" || rec["k"] != "v" {
		t.Fatalf("unexpected record %v", rec)
	}
	if _, ok := rec["trace_id"]; ok {
		t.Fatal("trace_id must be absent without a span")
	}
}
