package config

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// Helper function to set os.Args for testing
func setArgs(args []string) {
	os.Args = args
}

// Helper function to clear environment variables
func clearEnvVars() {
	os.Unsetenv("DOCPRESS_MODE")
	os.Unsetenv("DOCPRESS_HOST")
	os.Unsetenv("DOCPRESS_PORT")
	os.Unsetenv("DOCPRESS_DATADIR")
	os.Unsetenv("DOCPRESS_OUTDIR")
	os.Unsetenv("DOCPRESS_LOGLEVEL")
	os.Unsetenv("DOCPRESS_MAXFILESIZE")
	os.Unsetenv("DOCPRESS_MATCHTHRESHOLD")
	os.Unsetenv("DOCPRESS_OVERTIMEKEYWORDS")
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	// Save original args and environment
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	tempData := t.TempDir()
	tempOut := t.TempDir()
	setArgs([]string{"docpress", "--datadir=" + tempData, "--outdir=" + tempOut})
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	// Verify default values
	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, "stdio")
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("LoadFromFlags() Host = %v, want %v", cfg.Host, "127.0.0.1")
	}
	if cfg.Port != 8080 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 8080)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.MaxFileSize != 50*1024*1024 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 50*1024*1024)
	}
	if cfg.MatchThreshold != DefaultMatchThreshold {
		t.Errorf("LoadFromFlags() MatchThreshold = %v, want %v", cfg.MatchThreshold, DefaultMatchThreshold)
	}
	if len(cfg.OvertimeKeywords) != len(DefaultOvertimeKeywords) {
		t.Errorf("LoadFromFlags() OvertimeKeywords = %v, want %v", cfg.OvertimeKeywords, DefaultOvertimeKeywords)
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	tests := []struct {
		name          string
		extraArgs     []string
		wantMode      string
		wantHost      string
		wantPort      int
		wantLogLevel  string
		wantThreshold float64
	}{
		{
			name:          "stdio mode defaults",
			extraArgs:     nil,
			wantMode:      "stdio",
			wantHost:      "127.0.0.1",
			wantPort:      8080,
			wantLogLevel:  "info",
			wantThreshold: DefaultMatchThreshold,
		},
		{
			name:          "server mode",
			extraArgs:     []string{"--mode=server"},
			wantMode:      "server",
			wantHost:      "127.0.0.1",
			wantPort:      8080,
			wantLogLevel:  "info",
			wantThreshold: DefaultMatchThreshold,
		},
		{
			name:          "server mode with custom host and port",
			extraArgs:     []string{"--mode=server", "--host=0.0.0.0", "--port=9090"},
			wantMode:      "server",
			wantHost:      "0.0.0.0",
			wantPort:      9090,
			wantLogLevel:  "info",
			wantThreshold: DefaultMatchThreshold,
		},
		{
			name:          "debug logging and relaxed threshold",
			extraArgs:     []string{"--loglevel=debug", "--matchthreshold=0.9"},
			wantMode:      "stdio",
			wantHost:      "127.0.0.1",
			wantPort:      8080,
			wantLogLevel:  "debug",
			wantThreshold: 0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save original args and environment
			originalArgs := os.Args
			defer func() {
				os.Args = originalArgs
				resetFlags()
				clearEnvVars()
			}()

			args := []string{"docpress", "--datadir=" + t.TempDir(), "--outdir=" + t.TempDir()}
			args = append(args, tt.extraArgs...)

			setArgs(args)
			resetFlags()
			clearEnvVars()

			cfg, err := LoadFromFlags()
			if err != nil {
				t.Fatalf("LoadFromFlags() unexpected error: %v", err)
			}

			if cfg.Mode != tt.wantMode {
				t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, tt.wantMode)
			}
			if cfg.Host != tt.wantHost {
				t.Errorf("LoadFromFlags() Host = %v, want %v", cfg.Host, tt.wantHost)
			}
			if cfg.Port != tt.wantPort {
				t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, tt.wantPort)
			}
			if cfg.LogLevel != tt.wantLogLevel {
				t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, tt.wantLogLevel)
			}
			if cfg.MatchThreshold != tt.wantThreshold {
				t.Errorf("LoadFromFlags() MatchThreshold = %v, want %v", cfg.MatchThreshold, tt.wantThreshold)
			}
		})
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	// Save original args and environment
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Setenv("DOCPRESS_MODE", "server")
	os.Setenv("DOCPRESS_HOST", "192.168.1.1")
	os.Setenv("DOCPRESS_PORT", "3000")
	os.Setenv("DOCPRESS_DATADIR", t.TempDir())
	os.Setenv("DOCPRESS_OUTDIR", t.TempDir())
	os.Setenv("DOCPRESS_LOGLEVEL", "warn")
	os.Setenv("DOCPRESS_OVERTIMEKEYWORDS", "overtime,extra hours")

	setArgs([]string{"docpress"})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "server" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, "server")
	}
	if cfg.Host != "192.168.1.1" {
		t.Errorf("LoadFromFlags() Host = %v, want %v", cfg.Host, "192.168.1.1")
	}
	if cfg.Port != 3000 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 3000)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
	if len(cfg.OvertimeKeywords) != 2 || cfg.OvertimeKeywords[1] != "extra hours" {
		t.Errorf("LoadFromFlags() OvertimeKeywords = %v, want [overtime extra hours]", cfg.OvertimeKeywords)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	// Save original args and environment
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Setenv("DOCPRESS_MODE", "server")
	os.Setenv("DOCPRESS_HOST", "192.168.1.1")
	os.Setenv("DOCPRESS_PORT", "3000")

	// Set args that should override environment
	setArgs([]string{"docpress", "--mode=stdio", "--host=localhost", "--port=8888",
		"--datadir=" + t.TempDir(), "--outdir=" + t.TempDir()})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	// Flags should override environment variables
	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v (should override env)", cfg.Mode, "stdio")
	}
	if cfg.Host != "localhost" {
		t.Errorf("LoadFromFlags() Host = %v, want %v (should override env)", cfg.Host, "localhost")
	}
	if cfg.Port != 8888 {
		t.Errorf("LoadFromFlags() Port = %v, want %v (should override env)", cfg.Port, 8888)
	}
}

func TestLoadFromFlags_InvalidMode(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"docpress", "--mode=invalid", "--datadir=" + t.TempDir(), "--outdir=" + t.TempDir()})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid mode")
	}
	if err != nil && !strings.Contains(err.Error(), "mode must be either 'stdio' or 'server'") {
		t.Errorf("LoadFromFlags() error = %v, want error about invalid mode", err)
	}
}

func TestLoadFromFlags_InvalidPort(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"docpress", "--mode=server", "--port=99999",
		"--datadir=" + t.TempDir(), "--outdir=" + t.TempDir()})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid port")
	}
	if err != nil && !strings.Contains(err.Error(), "port must be between 1 and 65535") {
		t.Errorf("LoadFromFlags() error = %v, want error about invalid port", err)
	}
}

func TestLoadFromFlags_InvalidThreshold(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"docpress", "--matchthreshold=2",
		"--datadir=" + t.TempDir(), "--outdir=" + t.TempDir()})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid threshold")
	}
	if err != nil && !strings.Contains(err.Error(), "match threshold") {
		t.Errorf("LoadFromFlags() error = %v, want error about match threshold", err)
	}
}
