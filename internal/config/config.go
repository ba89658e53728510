package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB upload ceiling

	// DefaultMatchThreshold is the rate-matcher similarity cutoff.
	// Override it via flags or DOCPRESS_MATCHTHRESHOLD, not at call sites.
	DefaultMatchThreshold = 0.97

	// Directory permissions
	DefaultDirPerm = 0o750
)

// DefaultOvertimeKeywords mark a line item as overtime work.
var DefaultOvertimeKeywords = []string{"overtime", "ot", "o.t"}

// Config holds all configuration for the docpress engine
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Document configuration
	DataDir   string // sqlite database and local template cache
	OutputDir string // rendered PDFs and CSV exports

	// Matching configuration
	MatchThreshold   float64
	OvertimeKeywords []string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum upload size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:             ModeStdio, // Default to stdio mode for MCP compatibility
		Host:             DefaultHost,
		Port:             DefaultPort,
		DataDir:          filepath.Join(currentDir, "data"),
		OutputDir:        filepath.Join(currentDir, "out"),
		MatchThreshold:   DefaultMatchThreshold,
		OvertimeKeywords: append([]string(nil), DefaultOvertimeKeywords...),
		Version:          "1.0.0",
		ServerName:       "docpress",
		LogLevel:         DefaultLogLevel,
		MaxFileSize:      DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if expanded, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = expanded
	}
	if expanded, err := filepath.Abs(cfg.OutputDir); err == nil {
		cfg.OutputDir = expanded
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("DOCPRESS")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("datadir", cfg.DataDir)
	viper.SetDefault("outdir", cfg.OutputDir)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("matchthreshold", cfg.MatchThreshold)
	viper.SetDefault("overtimekeywords", strings.Join(cfg.OvertimeKeywords, ","))
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("datadir", cfg.DataDir, "Directory for the template/rate database and local cache")
	pflag.String("outdir", cfg.OutputDir, "Directory for rendered PDFs and CSV exports")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum upload size in bytes")
	pflag.Float64("matchthreshold", cfg.MatchThreshold, "Similarity threshold for rate reference matching")
	pflag.String("overtimekeywords", strings.Join(cfg.OvertimeKeywords, ","), "Comma-separated keywords that mark overtime line items")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("datadir", pflag.Lookup("datadir"))
	_ = viper.BindPFlag("outdir", pflag.Lookup("outdir"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("matchthreshold", pflag.Lookup("matchthreshold"))
	_ = viper.BindPFlag("overtimekeywords", pflag.Lookup("overtimekeywords"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\ndocpress - template rendering and data-binding engine for scanned documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                  # stdio MCP mode (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --datadir=/var/lib/docpress      # stdio mode, custom data directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --port=8081        # HTTP server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  DOCPRESS_MODE              Run mode\n")
		fmt.Fprintf(os.Stderr, "  DOCPRESS_HOST              Server host\n")
		fmt.Fprintf(os.Stderr, "  DOCPRESS_PORT              Server port\n")
		fmt.Fprintf(os.Stderr, "  DOCPRESS_DATADIR           Data directory\n")
		fmt.Fprintf(os.Stderr, "  DOCPRESS_OUTDIR            Output directory\n")
		fmt.Fprintf(os.Stderr, "  DOCPRESS_LOGLEVEL          Log level\n")
		fmt.Fprintf(os.Stderr, "  DOCPRESS_MAXFILESIZE       Maximum upload size\n")
		fmt.Fprintf(os.Stderr, "  DOCPRESS_MATCHTHRESHOLD    Rate match similarity threshold\n")
		fmt.Fprintf(os.Stderr, "  DOCPRESS_OVERTIMEKEYWORDS  Overtime keyword list\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.DataDir = viper.GetString("datadir")
	cfg.OutputDir = viper.GetString("outdir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.MatchThreshold = viper.GetFloat64("matchthreshold")
	cfg.OvertimeKeywords = splitKeywords(viper.GetString("overtimekeywords"))
}

func splitKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		kw = strings.TrimSpace(strings.ToLower(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.DataDir == "" {
		return errors.New("data directory cannot be empty")
	}
	if err := ensureDir(c.DataDir); err != nil {
		return err
	}
	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}
	if err := ensureDir(c.OutputDir); err != nil {
		return err
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return errors.New("match threshold must be in (0, 1]")
	}
	if len(c.OvertimeKeywords) == 0 {
		return errors.New("overtime keyword list cannot be empty")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

func ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access directory %s: %w", dir, err)
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, DataDir: %s, OutputDir: %s, LogLevel: %s, MaxFileSize: %d, MatchThreshold: %.2f}",
		c.Mode, c.Host, c.Port, c.DataDir, c.OutputDir, c.LogLevel, c.MaxFileSize, c.MatchThreshold)
}

// IsServerMode returns true if running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if running in stdio MCP mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
