package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_URL", "file::memory:")
	t.Setenv("DB_DRIVER", "sqlite")
	for _, key := range []string{"PORT", "JWT_EXPIRY_HOURS", "REDIS_ADDR", "KAFKA_BROKER", "KAFKA_TOPIC", "BUSINESS_CONFIG", "CORS_ORIGINS", "PUBLIC_BASE_URL"} {
		t.Setenv(key, "")
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	setBaseEnv(t)

	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, "sqlite", s.DBDriver)
	assert.Equal(t, 24*time.Hour, s.JWTExpiry)
	assert.Equal(t, "pos-events", s.KafkaTopic)
	assert.Equal(t, []string{"http://localhost:3000"}, s.CORSOrigins)
	assert.Equal(t, DefaultBusiness(), s.Business)
	assert.Equal(t, "0.1", s.Business.ServiceCharge().String())
}

func TestLoadSettingsFromEnv(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_EXPIRY_HOURS", "8")
	t.Setenv("CORS_ORIGINS", "https://pos.example.com, http://localhost:5173")
	t.Setenv("PUBLIC_BASE_URL", "https://pos.example.com/")

	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "9000", s.Port)
	assert.Equal(t, 8*time.Hour, s.JWTExpiry)
	assert.Equal(t, []string{"https://pos.example.com", "http://localhost:5173"}, s.CORSOrigins)
	assert.Equal(t, "https://pos.example.com", s.PublicBaseURL)
}

func TestLoadSettingsRequiresSecrets(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")
	_, err := LoadSettings()
	assert.EqualError(t, err, "JWT_SECRET not set")

	setBaseEnv(t)
	t.Setenv("DB_URL", "")
	_, err = LoadSettings()
	assert.EqualError(t, err, "DB_URL not set")

	setBaseEnv(t)
	t.Setenv("JWT_EXPIRY_HOURS", "forever")
	_, err = LoadSettings()
	assert.Error(t, err)
}

func TestLoadBusiness(t *testing.T) {
	path := filepath.Join(t.TempDir(), "business.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
restaurant_name: Thamel Kitchen
service_charge_rate: 0.125
payment_methods: [cash, card]
`), 0o600))

	b, err := LoadBusiness(path)
	require.NoError(t, err)

	assert.Equal(t, "Thamel Kitchen", b.RestaurantName)
	assert.Equal(t, "0.125", b.ServiceCharge().String())
	assert.Equal(t, []string{"cash", "card"}, b.PaymentMethods)
	// untouched keys keep their defaults
	assert.Equal(t, "Rs.", b.Currency)
	assert.Equal(t, "5 0 * * *", b.ReportSnapshotCron)
}

func TestLoadBusinessRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"rate.yaml":    "service_charge_rate: 1.5\n",
		"methods.yaml": "payment_methods: []\n",
		"broken.yaml":  "service_charge_rate: [\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		_, err := LoadBusiness(path)
		assert.Error(t, err, name)
	}

	_, err := LoadBusiness(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadSettingsWithBusinessFile(t *testing.T) {
	setBaseEnv(t)
	path := filepath.Join(t.TempDir(), "business.yaml")
	require.NoError(t, os.WriteFile(path, []byte("currency: NPR\n"), 0o600))
	t.Setenv("BUSINESS_CONFIG", path)

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "NPR", s.Business.Currency)
}
