package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "50051", cfg.GRPCPort)
	assert.Equal(t, CatalogSQLite, cfg.Catalog.Backend)
	assert.Equal(t, PrintSinkLog, cfg.Print.Sink)
	assert.Equal(t, "print-jobs", cfg.Print.KafkaTopic)
	assert.Equal(t, time.Second, cfg.Sale.ScanCooldown)
	assert.Equal(t, uint32(5), cfg.Print.BreakerMaxFailures)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CATALOG_BACKEND", "mongo")
	t.Setenv("PRINT_SINK", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SCAN_COOLDOWN", "0s")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CatalogMongo, cfg.Catalog.Backend)
	assert.Equal(t, PrintSinkKafka, cfg.Print.Sink)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Print.KafkaBrokers)
	assert.Equal(t, time.Duration(0), cfg.Sale.ScanCooldown)
	assert.Equal(t, 3, cfg.Print.RedisDB)
}

func TestLoad_ReportsAllInvalidValues(t *testing.T) {
	t.Setenv("SCAN_COOLDOWN", "soon")
	t.Setenv("REDIS_DB", "x")
	t.Setenv("CATALOG_BACKEND", "excel")

	_, err := Load()
	require.Error(t, err)

	assert.Contains(t, err.Error(), "SCAN_COOLDOWN")
	assert.Contains(t, err.Error(), "REDIS_DB")
	assert.Contains(t, err.Error(), "CATALOG_BACKEND")
}

func TestLoad_RejectsNonPositiveRequestTimeout(t *testing.T) {
	for _, value := range []string{"0s", "-5s"} {
		t.Setenv("REQUEST_TIMEOUT", value)

		_, err := Load()
		require.Error(t, err, value)
		assert.Contains(t, err.Error(), "REQUEST_TIMEOUT")
	}
}
