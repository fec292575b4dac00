package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"batchsend/internal/domain"
	"batchsend/internal/infrastructure/telemetry"
	"batchsend/internal/streaming"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTopic = "batchsend-results"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes run events keyed by run id, so one run stays on one partition.
type Producer struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

type ProducerConfig struct {
	Brokers []string
	Topic   string
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		cfg.Topic = defaultTopic
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newProducer(writer, cfg.Topic), nil
}

func newProducer(writer messageWriter, topic string) *Producer {
	return &Producer{writer: writer, topic: topic, now: time.Now}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func (p *Producer) StartRun(ctx context.Context, run domain.Run) error {
	return p.publish(ctx, "batchsend.publish_run_started", streaming.Message{
		Type:      streaming.MessageTypeRunStarted,
		RunID:     run.ID,
		Source:    run.Source,
		Total:     run.Total,
		Timestamp: domain.FormatTimestamp(run.StartedAt),
	})
}

func (p *Producer) RecordResult(ctx context.Context, run domain.Run, seq int, result domain.SubmissionResult) error {
	return p.publish(ctx, "batchsend.publish_submission", streaming.Message{
		Type:      streaming.MessageTypeSubmission,
		RunID:     run.ID,
		Seq:       seq,
		Timestamp: domain.FormatTimestamp(p.now()),
		Result:    &result,
	})
}

func (p *Producer) FinishRun(ctx context.Context, run domain.Run, summary domain.BatchSummary) error {
	return p.publish(ctx, "batchsend.publish_summary", streaming.Message{
		Type:      streaming.MessageTypeSummary,
		RunID:     run.ID,
		Total:     summary.Total,
		Timestamp: summary.Timestamp,
		Summary:   &summary,
	})
}

func (p *Producer) publish(ctx context.Context, spanName string, msg streaming.Message) error {
	traceCtx, traceIDHex := telemetry.ContextWithTrace(ctx)
	traceCtx, span := otel.Tracer("batchsend/kafka").Start(traceCtx, spanName, trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("run.id", msg.RunID),
		attribute.String("messaging.destination.name", p.topic),
	)

	msg.TraceID = traceIDHex
	payload, err := streaming.Encode(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	headers := make([]kafka.Header, 0, 2)
	telemetry.InjectKafkaHeaders(traceCtx, &headers)
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(msg.RunID),
		Value:   payload,
		Headers: headers,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
