// Package publish writes digest reports to Kafka
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ngmaloney/reefcast/internal/config"
	"github.com/ngmaloney/reefcast/internal/digest"
	"github.com/ngmaloney/reefcast/internal/observability"
	"github.com/ngmaloney/reefcast/internal/ranking"
)

// Message types carried in the message_type header
const (
	TypeDigest = "digest"
	TypeSite   = "site"
)

// MessageWriter is the part of *kafkago.Writer the publisher uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces one message per report and one per ranked site
type Publisher struct {
	writer  MessageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured digest topic
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 250 * time.Millisecond,
	}
	return NewPublisherWithWriter(w, logger, metrics)
}

// NewPublisherWithWriter wraps an existing writer
func NewPublisherWithWriter(w MessageWriter, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	if logger == nil {
		logger = observability.Discard()
	}
	return &Publisher{writer: w, logger: logger, metrics: metrics}
}

// Publish writes the report and every ranked site in a single batch
func (p *Publisher) Publish(ctx context.Context, report *digest.Report) error {
	msgs, err := Messages(report)
	if err != nil {
		p.failed()
		return err
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.failed()
		return fmt.Errorf("failed to publish digest %s: %w", report.ID, err)
	}

	if p.metrics != nil {
		p.metrics.DigestsPublished.Inc()
	}
	p.logger.Info("digest published", "report", report.ID, "messages", len(msgs))
	return nil
}

// Close flushes and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) failed() {
	if p.metrics != nil {
		p.metrics.PublishErrors.Inc()
	}
}

// siteMessage is a ranked site tagged with the report it belongs to
type siteMessage struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`
	ranking.RankedLocation
}

// Messages serializes a report into its Kafka messages: the report keyed by
// its id, then each ranked site keyed by site id
func Messages(report *digest.Report) ([]kafkago.Message, error) {
	generatedAt := []byte(report.GeneratedAt.Format(time.RFC3339))

	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("serialize digest: %w", err)
	}
	msgs := []kafkago.Message{{
		Key:   []byte(report.ID),
		Value: body,
		Headers: []kafkago.Header{
			{Key: "message_type", Value: []byte(TypeDigest)},
			{Key: "generated_at", Value: generatedAt},
		},
	}}

	for _, site := range report.Ranked {
		body, err := json.Marshal(siteMessage{
			ReportID:       report.ID,
			GeneratedAt:    report.GeneratedAt,
			RankedLocation: site,
		})
		if err != nil {
			return nil, fmt.Errorf("serialize site %s: %w", site.Location.ID, err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(site.Location.ID),
			Value: body,
			Headers: []kafkago.Header{
				{Key: "message_type", Value: []byte(TypeSite)},
				{Key: "report_id", Value: []byte(report.ID)},
				{Key: "generated_at", Value: generatedAt},
			},
		})
	}
	return msgs, nil
}
