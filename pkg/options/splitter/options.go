// Package splitter provides chunk splitter configuration options.
package splitter

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options contains document splitting configuration.
type Options struct {
	// ChunkSize is the target chunk length in runes.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is how many runes consecutive chunks share.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// Separators are tried in order when a section exceeds ChunkSize.
	Separators []string `json:"separators" mapstructure:"separators"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		ChunkSize:    1200,
		ChunkOverlap: 120,
		Separators:   []string{"\n\n", "\n", ". ", " "},
	}
}

// AddFlags adds flags for splitter options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.ChunkSize, "splitter.chunk-size", o.ChunkSize, "Target chunk length in runes")
	fs.IntVar(&o.ChunkOverlap, "splitter.chunk-overlap", o.ChunkOverlap, "Overlap between consecutive chunks in runes")
	fs.StringSliceVar(&o.Separators, "splitter.separators", o.Separators, "Separators tried when splitting oversized sections")
}

// Validate validates the splitter options.
func (o *Options) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("splitter.chunk-size must be positive")
	}
	if o.ChunkOverlap < 0 {
		return fmt.Errorf("splitter.chunk-overlap cannot be negative")
	}
	if o.ChunkOverlap >= o.ChunkSize {
		return fmt.Errorf("splitter.chunk-overlap must be smaller than chunk-size")
	}
	return nil
}
