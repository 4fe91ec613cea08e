package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DOCSTORE_"

// Load returns Default overridden by DOCSTORE_* environment variables. If
// envFiles are given (or ".env" exists) they are loaded first; variables
// already present in the environment take precedence. The result is
// validated.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		// Load .env file if present (local development), ignore if missing.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &Error{Field: "env_file", Reason: err.Error()}
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return &Error{Field: "env_file", Reason: err.Error()}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	str("DRIVER", &c.Driver)
	str("HOST", &c.Host)
	str("USERNAME", &c.Username)
	str("PASSWORD", &c.Password)
	str("DATABASE", &c.Database)
	str("SSLMODE", &c.SSLMode)
	str("PATH", &c.Path)
	str("TABLE", &c.Table)
	str("TRAVERSAL_PATHS", &c.TraversalPaths)
	str("DUMP_DTYPE", &c.DumpDType)
	str("PAYLOAD_COMPRESSION", &c.PayloadCompression)

	ints := map[string]*int{"PORT": &c.Port, "MAX_CONNECTIONS": &c.MaxConnections}
	for key, dst := range ints {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return &Error{Field: strings.ToLower(key), Reason: err.Error()}
			}
			*dst = n
		}
	}
	bools := map[string]*bool{"RETURN_EMBEDDINGS": &c.ReturnEmbeddings, "DRY_RUN": &c.DryRun}
	for key, dst := range bools {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return &Error{Field: strings.ToLower(key), Reason: err.Error()}
			}
			*dst = b
		}
	}
	durations := map[string]*time.Duration{"ACQUIRE_TIMEOUT": &c.AcquireTimeout, "CONNECT_TIMEOUT": &c.ConnectTimeout}
	for key, dst := range durations {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				return &Error{Field: strings.ToLower(key), Reason: err.Error()}
			}
			*dst = d
		}
	}
	return nil
}
