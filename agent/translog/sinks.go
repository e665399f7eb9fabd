package translog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	webhookx "github.com/tanpawarit/Interview-Coach-Agent/pkg/webhook"
)

// Sink receives the finished session record. Sink failures are reported
// but never fail the session.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// FileSink writes one pretty-printed JSON file per session into a logs
// directory.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	if dir == "" {
		dir = "logs"
	}
	return &FileSink{dir: dir}
}

func (s *FileSink) Write(_ context.Context, rec Record) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("translog: create log dir: %w", err)
	}
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("translog: marshal record: %w", err)
	}
	name := fmt.Sprintf("interview_%s_%s.json", rec.CreatedAtUTC.Format("20060102T150405"), rec.SessionID)
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return fmt.Errorf("translog: write record: %w", err)
	}
	return nil
}

// WebhookSink forwards the record to an external collector.
type WebhookSink struct {
	client *webhookx.Client
}

func NewWebhookSink(client *webhookx.Client) *WebhookSink {
	return &WebhookSink{client: client}
}

func (s *WebhookSink) Write(ctx context.Context, rec Record) error {
	return s.client.Publish(ctx, rec)
}
