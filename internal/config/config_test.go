package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func etcPath(t *testing.T) string {
	t.Helper()

	// project root is two levels up from internal/config
	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err)

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(etcPath(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.NotZero(t, cfg.Webserver.Port)
	assert.NotEmpty(t, cfg.Webserver.URL)
	assert.Equal(t, EngineSQLite, cfg.DB.GormEngine)
	assert.NotEmpty(t, cfg.DB.Name)
	assert.Equal(t, "admin", cfg.Seed.AdminUsername)
	assert.Equal(t, "access.log", cfg.Log.File.Access.Name)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	require.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name: "valid config",
			config: Config{
				Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
			},
		},
		{
			name: "missing port",
			config: Config{
				Webserver: Webserver{Port: 0, URL: "http://localhost:8080"},
			},
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name: "missing URL",
			config: Config{
				Webserver: Webserver{Port: 8080},
			},
			wantErr: ErrEmptyURL,
		},
		{
			name: "unknown engine",
			config: Config{
				DB:        DB{GormEngine: "oracle"},
				Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
			},
			wantErr: ErrUnsupportedEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"}}

	require.NoError(t, validate(&cfg))
	assert.Equal(t, 5, cfg.Webserver.ShutDownTime)
	assert.Equal(t, EngineSQLite, cfg.DB.GormEngine)
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Title":"Test Override","Webserver":{"Port":9090},"DB":{"GormEngine":"postgres"}}`)

	cfg, err := ReadConfig(etcPath(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Override", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
	assert.Equal(t, EnginePostgres, cfg.DB.GormEngine)
	// untouched keys keep their file values
	assert.NotEmpty(t, cfg.Webserver.URL)
}

func TestReadConfigWithBrokenJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Title":`)

	_, err := ReadConfig(etcPath(t))
	require.Error(t, err)
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title:     "Test",
		DevMode:   true,
		Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
	}

	tomlStr, err := DumpConfig(&cfg)
	require.NoError(t, err)
	assert.Contains(t, tomlStr, "Test")
	assert.Contains(t, tomlStr, "[Webserver]")
}

func TestDumpConfigJSON(t *testing.T) {
	cfg := Config{
		Title:     "Test",
		Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
	}

	jsonStr, err := DumpConfigJSON(&cfg)
	require.NoError(t, err)
	assert.Contains(t, jsonStr, `"Title": "Test"`)
}
