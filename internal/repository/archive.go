package repository

import (
	"context"
	"database/sql"
	"fmt"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/domain/repository"
	pkgkafka "SignalDesk/pkg/kafka"
)

// KafkaArchiver publishes delivered signals to a Kafka topic, keyed by pair
// so one pair's history lands in one partition.
type KafkaArchiver struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaArchiver creates a Kafka-backed signal archiver.
func NewKafkaArchiver(producer *pkgkafka.Producer, topic string) repository.Archiver {
	return &KafkaArchiver{producer: producer, topic: topic}
}

func (a *KafkaArchiver) Archive(ctx context.Context, s *models.Signal) error {
	return a.producer.Publish(ctx, a.topic, []byte(s.Pair), s)
}

func (a *KafkaArchiver) Close() error {
	if a.producer != nil {
		return a.producer.Close()
	}
	return nil
}

// ClickHouseArchiver inserts delivered signals into an analytics table.
type ClickHouseArchiver struct {
	db    *sql.DB
	table string
}

// NewClickHouseArchiver creates a ClickHouse-backed signal archiver.
func NewClickHouseArchiver(db *sql.DB, table string) repository.Archiver {
	return &ClickHouseArchiver{db: db, table: table}
}

func (a *ClickHouseArchiver) Archive(ctx context.Context, s *models.Signal) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (id, ts, market, pair, direction, confidence, expiration_s) VALUES (?, ?, ?, ?, ?, ?, ?)",
		a.table,
	)
	_, err := a.db.ExecContext(ctx, q,
		s.ID,
		s.CreatedTime(),
		string(s.Market),
		s.Pair,
		string(s.Direction),
		string(s.Confidence),
		s.Expiration,
	)
	return err
}

func (a *ClickHouseArchiver) Close() error {
	return nil // connection pool is owned by pkg/clickhouse
}

// NoopArchiver drops everything; used when no analytics sink is configured.
type NoopArchiver struct{}

func (NoopArchiver) Archive(context.Context, *models.Signal) error { return nil }
func (NoopArchiver) Close() error                                  { return nil }
