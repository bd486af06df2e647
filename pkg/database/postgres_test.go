package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-scheduler-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "tt", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=tt sslmode=disable", dsn)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "00001_catalogue.sql", entries[0].Name())
	assert.Equal(t, "00003_timetables.sql", entries[2].Name())
}
