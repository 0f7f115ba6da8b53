package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// Producer wraps a Kafka writer for JSON payloads.
type Producer struct {
	writer *kafka.Writer
	comp   string
}

// NewProducer creates a new Kafka producer.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := defaultProducerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}

	compression, err := parseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	var balancer kafka.Balancer = &kafka.LeastBytes{}
	if cfg.HashByKey {
		balancer = &kafka.Hash{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     balancer,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		Compression:  compression,
		Async:        cfg.Async,
	}

	initProducerMetricsOnce()

	return &Producer{writer: writer, comp: cfg.Compression}, nil
}

// Publish marshals value as JSON and writes it to topic keyed by key.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kafka: marshal message: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: payload,
	})
	p.observe(topic, err)
	if err != nil {
		return fmt.Errorf("kafka: write message: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

func (p *Producer) observe(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	producerMessagesTotal.WithLabelValues(topic, p.comp, result).Inc()
}

func parseCompression(codec string) (kafka.Compression, error) {
	switch codec {
	case "", "none":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "snappy":
		return kafka.Snappy, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	default:
		return 0, fmt.Errorf("kafka: unknown compression %q", codec)
	}
}

var (
	producerMetricsOnce   sync.Once
	producerMessagesTotal *prometheus.CounterVec
)

func initProducerMetricsOnce() {
	producerMetricsOnce.Do(func() {
		producerMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signaldesk_kafka_messages_total",
			Help: "Kafka messages produced by topic, compression and result.",
		}, []string{"topic", "compression", "result"})
	})
}
