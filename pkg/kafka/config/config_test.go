package kafka_config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Brokers:                   []string{"localhost:9092"},
		ProducerMaxAttempts:       DefaultProducerMaxAttempts,
		ProducerBatchTimeout:      DefaultProducerBatchTimeout,
		ProducerRequireAcks:       DefaultProducerRequireAcks,
		ProducerCompression:       DefaultProducerCompression,
		ConsumerStartOffset:       DefaultConsumerStartOffset,
		ConsumerMinBytes:          DefaultConsumerMinBytes,
		ConsumerMaxBytes:          DefaultConsumerMaxBytes,
		ConsumerMaxWait:           DefaultConsumerMaxWait,
		ConsumerCommitInterval:    DefaultConsumerCommitInterval,
		ConsumerHeartbeatInterval: DefaultConsumerHeartbeatInterval,
		ConsumerSessionTimeout:    DefaultConsumerSessionTimeout,
		ConsumerRebalanceTimeout:  DefaultConsumerRebalanceTimeout,
		ConsumerMaxRetries:        DefaultConsumerMaxRetries,
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "kafka-1:9092, ,kafka-2:9092")
	t.Setenv(EnvKafkaProducerCompression, "zstd")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, "zstd", cfg.ProducerCompression)
	assert.Equal(t, DefaultConsumerMaxWait, cfg.ConsumerMaxWait)
}

func TestLoad_InvalidCompression(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProducerCompression")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"latest offset", func(c *Config) { c.ConsumerStartOffset = -1 }, ""},
		{"no brokers", func(c *Config) { c.Brokers = nil }, "At least one Kafka broker"},
		{"blank broker", func(c *Config) { c.Brokers = []string{"localhost:9092", ""} }, "Broker 1 cannot be empty"},
		{"acks", func(c *Config) { c.ProducerRequireAcks = 2 }, "ProducerRequireAcks"},
		{"offset", func(c *Config) { c.ConsumerStartOffset = -3 }, "ConsumerStartOffset"},
		{"max wait", func(c *Config) { c.ConsumerMaxWait = 0 }, "ConsumerMaxWait"},
		{"retries", func(c *Config) { c.ConsumerMaxRetries = -1 }, "ConsumerMaxRetries"},
		{"batch timeout", func(c *Config) { c.ProducerBatchTimeout = -time.Second }, "ProducerBatchTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ListsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Brokers = nil
	cfg.ConsumerMinBytes = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1. At least one Kafka broker is required")
	assert.Contains(t, err.Error(), "2. ConsumerMinBytes must be positive")
}
