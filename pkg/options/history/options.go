// Package history provides conversation history configuration options.
package history

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Driver names understood by the history store.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options contains conversation history configuration.
type Options struct {
	// Enabled toggles persistence of questions and answers.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Driver selects the database backend (sqlite, postgres).
	Driver string `json:"driver" mapstructure:"driver"`

	// DSN is the database connection string. For sqlite this is a file path.
	DSN string `json:"dsn" mapstructure:"dsn"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Driver: DriverSQLite,
		DSN:    "hermes-history.db",
	}
}

// AddFlags adds flags for history options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "history.enabled", o.Enabled, "Persist questions and answers")
	fs.StringVar(&o.Driver, "history.driver", o.Driver, "History database backend (sqlite, postgres)")
	fs.StringVar(&o.DSN, "history.dsn", o.DSN, "History database connection string")
}

// Validate validates the history options.
func (o *Options) Validate() error {
	if !o.Enabled {
		return nil
	}
	switch o.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("history.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, o.Driver)
	}
	if o.DSN == "" {
		return fmt.Errorf("history.dsn is required when history is enabled")
	}
	return nil
}
