// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and HCP_ environment variables on top.
// - Validation runs once, after all layers are merged.
package config

// Document source kinds.
const (
	SourceFile = "file"
	SourceHTTP = "http"
)

// Duplicate-date policies applied by the normalizer.
const (
	CollisionFirst = "first"
	CollisionLast  = "last"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"omitempty,oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// Players lists the display names of every tracked player, in display order.
	Players []string `koanf:"players" validate:"required,min=1,unique,dive,required"`

	// Source selects where player documents come from: file or http.
	Source string `koanf:"source" validate:"required,oneof=file http"`

	// DataDir is the directory holding player documents when Source is file.
	DataDir string `koanf:"data_dir" validate:"required_if=Source file"`

	// BaseURL is the prefix player documents are fetched from when Source is http.
	BaseURL string `koanf:"base_url" validate:"required_if=Source http,omitempty,url"`

	// FetchTimeoutMS bounds a single HTTP document fetch; 0 leaves it unbounded.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms" validate:"gte=0"`

	// DocumentSuffix is appended to the normalized player name to build a document name.
	DocumentSuffix string `koanf:"document_suffix" validate:"required"`

	// CollisionPolicy decides which revision survives when a player has two on one date.
	CollisionPolicy string `koanf:"collision_policy" validate:"required,oneof=first last"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		Players:         []string{"Fábio", "Pedro", "Eduardo", "Kleber"},
		Source:          SourceFile,
		DataDir:         "data",
		DocumentSuffix:  "HCP.json",
		CollisionPolicy: CollisionFirst,
	}
}
