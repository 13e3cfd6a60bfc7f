// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
	x509dn "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/dn"
	"github.com/joho/godotenv"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigFile names the environment variable holding the profile path.
	EnvConfigFile = "TLS_HIERARCHY_CONFIG_FILE"

	// EnvDotenvFile names the environment variable holding a dotenv file path.
	EnvDotenvFile = "TLS_HIERARCHY_ENV_FILE"

	// DefaultKeyPasswordEnv names the environment variable holding the key password.
	DefaultKeyPasswordEnv = "TLS_HIERARCHY_KEY_PASSWORD"

	// Store names of the two authorities.
	RootName         = "ca-root"
	IntermediateName = "ca-intermediate"
)

//go:embed schema.json
var schema []byte

// ErrInvalidConfig indicates a profile rejected by the schema.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Subject holds the attributes every certificate of the hierarchy shares.
// Empty fields are left out of the names.
type Subject struct {
	Country            string `json:"country,omitempty" yaml:"country,omitempty"`
	State              string `json:"state,omitempty" yaml:"state,omitempty"`
	Locality           string `json:"locality,omitempty" yaml:"locality,omitempty"`
	Organization       string `json:"organization,omitempty" yaml:"organization,omitempty"`
	OrganizationalUnit string `json:"organizationalUnit,omitempty" yaml:"organizationalUnit,omitempty"`
	Email              string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Tier configures one level of the hierarchy.
type Tier struct {
	// CommonName: Subject CN; for leaves it is a fallback when none is given
	CommonName string `json:"commonName,omitempty" yaml:"commonName,omitempty"`
	// KeyBits: RSA modulus size
	KeyBits int `json:"keyBits,omitempty" yaml:"keyBits,omitempty"`
	// Exponent: RSA public exponent
	Exponent int `json:"exponent,omitempty" yaml:"exponent,omitempty"`
	// Digest: Signature hash, one of sha256, sha384, sha512
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty"`
	// ValidityDays: Certificate lifetime in days
	ValidityDays int `json:"validityDays,omitempty" yaml:"validityDays,omitempty"`
	// PathLen: Path length constraint, intermediate only
	PathLen *int `json:"pathLen,omitempty" yaml:"pathLen,omitempty"`
}

// Config is the hierarchy profile.
type Config struct {
	Subject        Subject `json:"subject" yaml:"subject"`
	Root           Tier    `json:"root" yaml:"root"`
	Intermediate   Tier    `json:"intermediate" yaml:"intermediate"`
	Leaf           Tier    `json:"leaf" yaml:"leaf"`
	OutputDir      string  `json:"outputDir" yaml:"outputDir"`
	KeyPasswordEnv string  `json:"keyPasswordEnv" yaml:"keyPasswordEnv"`
}

// Default returns the built-in profile: RSA-4096 authorities, RSA-2048
// leaves, SHA-256 and ten year lifetimes, written to ./certs.
func Default() *Config {
	pathLen := 0
	return &Config{
		Subject: Subject{
			Country:            "BR",
			State:              "ES",
			Locality:           "Vitoria",
			Organization:       "CT",
			OrganizationalUnit: "DI",
		},
		Root:           Tier{CommonName: "Root CA", KeyBits: 4096, Exponent: 65537, Digest: "sha256", ValidityDays: 3650},
		Intermediate:   Tier{CommonName: "Intermediate CA", KeyBits: 4096, Exponent: 65537, Digest: "sha256", ValidityDays: 3650, PathLen: &pathLen},
		Leaf:           Tier{CommonName: "localhost", KeyBits: 2048, Exponent: 65537, Digest: "sha256", ValidityDays: 3650},
		OutputDir:      "certs",
		KeyPasswordEnv: DefaultKeyPasswordEnv,
	}
}

// Load reads the profile at path, or at $TLS_HIERARCHY_CONFIG_FILE when path
// is empty, over [Default]. With neither set it returns the defaults.
//
// Parameters:
//   - path: Path to a .json, .yaml or .yml profile (optional)
//
// Returns:
//   - *Config: The merged profile
//   - error: Read, parse or [ErrInvalidConfig] schema failures
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read config file: %w", err)
	}
	if err := parse(data, detectConfigFormat(path), cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnvFile exports the variables of the dotenv file at path, or at
// $TLS_HIERARCHY_ENV_FILE when path is empty. Variables already present in the
// environment win. With neither set it does nothing.
func LoadEnvFile(path string) error {
	if path == "" {
		path = os.Getenv(EnvDotenvFile)
	}
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadBytes parses a profile held in memory. yamlFormat selects YAML over JSON.
func LoadBytes(data []byte, yamlFormat bool) (*Config, error) {
	format := configFormatJSON
	if yamlFormat {
		format = configFormatYAML
	}
	cfg := Default()
	if err := parse(data, format, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse validates data against the schema and merges it into cfg.
func parse(data []byte, format configFormat, cfg *Config) error {
	var doc any
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	if doc == nil {
		return nil
	}

	if err := validate(doc); err != nil {
		return err
	}

	// Re-encoding the validated document lets both formats share the JSON tags.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to normalize config: %w", err)
	}
	if err := json.Unmarshal(normalized, cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// Schema returns the embedded JSON Schema.
func Schema() []byte { return append([]byte(nil), schema...) }

// Template returns the default profile as indented JSON.
func Template() ([]byte, error) {
	return json.MarshalIndent(Default(), "", "  ")
}

func validate(doc any) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// detectConfigFormat determines the configuration file format based on file extension.
func detectConfigFormat(configPath string) configFormat {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// Name builds a distinguished name from the shared subject and cn.
func (c *Config) Name(cn string) (x509dn.Name, error) {
	attrs := make([]x509dn.Attribute, 0, 7)
	add := func(t x509dn.AttributeType, v string) {
		if v != "" {
			attrs = append(attrs, x509dn.Attribute{Type: t, Value: v})
		}
	}
	add(x509dn.Country, c.Subject.Country)
	add(x509dn.State, c.Subject.State)
	add(x509dn.Locality, c.Subject.Locality)
	add(x509dn.Organization, c.Subject.Organization)
	add(x509dn.OrganizationalUnit, c.Subject.OrganizationalUnit)
	add(x509dn.CommonName, cn)
	add(x509dn.Email, c.Subject.Email)
	return x509dn.Build(attrs...)
}

// KeyPassword returns the password from the configured environment variable,
// or nil when keys are stored unencrypted.
func (c *Config) KeyPassword() []byte {
	if c.KeyPasswordEnv == "" {
		return nil
	}
	if v := os.Getenv(c.KeyPasswordEnv); v != "" {
		return []byte(v)
	}
	return nil
}

// ParsedDigest maps the tier digest name to an [x509certs.Digest].
func (t Tier) ParsedDigest() (x509certs.Digest, error) {
	if t.Digest == "" {
		return x509certs.DefaultDigest, nil
	}
	return x509certs.ParseDigest(t.Digest)
}
