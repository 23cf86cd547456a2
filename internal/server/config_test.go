package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "*", cfg.AllowedOrigins)
	require.Equal(t, "general", cfg.DefaultRoom)
	require.Equal(t, 100, cfg.HistoryLimit)
	require.Equal(t, 256, cfg.SendBuffer)
	require.Equal(t, int64(4096), cfg.MaxMessageSize)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("ALLOWED_ORIGINS", "http://chat.example.com")
	t.Setenv("DEFAULT_ROOM", "lobby")
	t.Setenv("HISTORY_LIMIT", "25")
	t.Setenv("SEND_BUFFER", "32")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, ":9999", cfg.Addr)
	require.Equal(t, "http://chat.example.com", cfg.AllowedOrigins)
	require.Equal(t, "lobby", cfg.DefaultRoom)
	require.Equal(t, 25, cfg.HistoryLimit)
	require.Equal(t, 32, cfg.SendBuffer)
	require.Equal(t, int64(1024), cfg.MaxMessageSize)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigClampsNonsenseValues(t *testing.T) {
	t.Setenv("SERVER_ADDR", "   ")
	t.Setenv("ALLOWED_ORIGINS", " ")
	t.Setenv("DEFAULT_ROOM", "  ")
	t.Setenv("HISTORY_LIMIT", "-5")
	t.Setenv("SEND_BUFFER", "0")
	t.Setenv("MAX_MESSAGE_SIZE", "-1")
	t.Setenv("LOG_LEVEL", " ")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, DefaultConfig(), cfg, "nonsense values should fall back to defaults instead of failing")
}

func TestConfigOrigins(t *testing.T) {
	tests := []struct {
		name    string
		origins string
		want    []string
	}{
		{name: "wildcard", origins: "*", want: []string{"*"}},
		{name: "single origin", origins: "http://chat.example.com", want: []string{"http://chat.example.com"}},
		{
			name:    "list with spaces and empty entries",
			origins: " http://a.example.com , ,http://b.example.com,",
			want:    []string{"http://a.example.com", "http://b.example.com"},
		},
		{name: "only separators", origins: " , ,", want: []string{"*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{AllowedOrigins: tt.origins}
			require.Equal(t, tt.want, cfg.Origins())
		})
	}
}
