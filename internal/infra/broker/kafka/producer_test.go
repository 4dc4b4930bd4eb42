package kafka

import (
	"errors"
	"testing"

	"github.com/IBM/sarama"
)

// The idempotent producer settings must pass sarama's config validation,
// which rejects Idempotent without Net.MaxOpenRequests = 1. A failure
// here surfaces before any broker is contacted.
func TestNewProducerConfigValidates(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Metadata.Retry.Max = 0

	_, err := NewProducer([]string{"127.0.0.1:1"}, cfg)
	if err == nil {
		t.Fatal("expected a connection error for an unreachable broker")
	}
	var confErr sarama.ConfigurationError
	if errors.As(err, &confErr) {
		t.Fatalf("producer config rejected: %v", err)
	}

	if got := cfg.Net.MaxOpenRequests; got != 1 {
		t.Fatalf("Net.MaxOpenRequests = %d, want 1", got)
	}
	if cfg.Producer.RequiredAcks != sarama.WaitForAll {
		t.Fatalf("RequiredAcks = %v, want WaitForAll", cfg.Producer.RequiredAcks)
	}
	if !cfg.Producer.Idempotent {
		t.Fatal("producer is not idempotent")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config failed validation: %v", err)
	}
}

func TestNewProducerDefaultConfigNotRejected(t *testing.T) {
	_, err := NewProducer([]string{"127.0.0.1:1"}, nil)
	if err == nil {
		t.Fatal("expected a connection error for an unreachable broker")
	}
	var confErr sarama.ConfigurationError
	if errors.As(err, &confErr) {
		t.Fatalf("default producer config rejected: %v", err)
	}
}
