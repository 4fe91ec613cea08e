// Package config holds the explicit docstore configuration record, its
// defaults and its validation.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/viant/docstore/document"
	"github.com/viant/docstore/engine"
	"github.com/viant/docstore/payload"
	"github.com/viant/docstore/vector"
)

// ErrInvalid matches every configuration error via errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// Error reports an invalid configuration field.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Field, e.Reason)
}

func (e *Error) Is(target error) bool { return target == ErrInvalid }

// Config is the full set of recognised store options. Zero values are not
// meaningful; start from Default.
type Config struct {
	Driver             string
	Host               string
	Port               int
	Username           string
	Password           string
	Database           string
	SSLMode            string
	Path               string
	Table              string
	MaxConnections     int
	AcquireTimeout     time.Duration
	ConnectTimeout     time.Duration
	TraversalPaths     string
	ReturnEmbeddings   bool
	DryRun             bool
	DumpDType          string
	PayloadCompression string
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Driver:             engine.Postgres.Name,
		Host:               "127.0.0.1",
		Port:               5432,
		Username:           "postgres",
		Password:           "123456",
		Database:           "postgres",
		SSLMode:            "disable",
		Path:               "docstore.db",
		Table:              "default_table",
		MaxConnections:     5,
		AcquireTimeout:     5 * time.Second,
		ConnectTimeout:     30 * time.Second,
		TraversalPaths:     "@r",
		ReturnEmbeddings:   true,
		DumpDType:          string(vector.Float64),
		PayloadCompression: payload.None.String(),
	}
}

// Validate checks every field and returns the first *Error found.
func (c *Config) Validate() error {
	d, ok := engine.ByName(c.Driver)
	if !ok {
		return &Error{Field: "driver", Reason: fmt.Sprintf("unsupported driver %q", c.Driver)}
	}
	if d.Name == engine.Postgres.Name {
		if c.Host == "" {
			return &Error{Field: "host", Reason: "must not be empty"}
		}
		if c.Port < 1 || c.Port > 65535 {
			return &Error{Field: "port", Reason: fmt.Sprintf("%d out of range 1..65535", c.Port)}
		}
		if c.Database == "" {
			return &Error{Field: "database", Reason: "must not be empty"}
		}
	} else if c.Path == "" {
		return &Error{Field: "path", Reason: "must not be empty"}
	}
	if !engine.ValidTable(c.Table) {
		return &Error{Field: "table", Reason: fmt.Sprintf("%q is not a valid identifier", c.Table)}
	}
	if c.MaxConnections < 1 {
		return &Error{Field: "max_connections", Reason: fmt.Sprintf("%d must be at least 1", c.MaxConnections)}
	}
	if c.AcquireTimeout <= 0 {
		return &Error{Field: "acquire_timeout", Reason: "must be positive"}
	}
	if c.ConnectTimeout <= 0 {
		return &Error{Field: "connect_timeout", Reason: "must be positive"}
	}
	if _, err := document.ParsePath(c.TraversalPaths); err != nil {
		return &Error{Field: "traversal_paths", Reason: err.Error()}
	}
	if _, err := vector.ParseDType(c.DumpDType); err != nil {
		return &Error{Field: "dump_dtype", Reason: err.Error()}
	}
	if _, err := payload.ParseCompression(c.PayloadCompression); err != nil {
		return &Error{Field: "payload_compression", Reason: err.Error()}
	}
	return nil
}

// Dialect returns the SQL dialect for the configured driver.
func (c *Config) Dialect() (engine.Dialect, error) {
	d, ok := engine.ByName(c.Driver)
	if !ok {
		return engine.Dialect{}, &Error{Field: "driver", Reason: fmt.Sprintf("unsupported driver %q", c.Driver)}
	}
	return d, nil
}

// DSN renders the connection string for the configured driver.
func (c *Config) DSN() string {
	if d, _ := engine.ByName(c.Driver); d.Name == engine.SQLite.Name {
		return c.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.Database,
	}
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// String describes c with the password redacted.
func (c *Config) String() string {
	if d, _ := engine.ByName(c.Driver); d.Name == engine.SQLite.Name {
		return fmt.Sprintf("sqlite://%s/%s", c.Path, c.Table)
	}
	return fmt.Sprintf("postgres://%s:***@%s:%d/%s/%s", c.Username, c.Host, c.Port, c.Database, c.Table)
}
