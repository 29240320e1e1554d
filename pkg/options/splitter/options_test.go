package splitter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/hermes/pkg/options/splitter"
)

func TestValidateDefaults(t *testing.T) {
	assert.NoError(t, splitter.NewOptions().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	opts := splitter.NewOptions()
	opts.ChunkSize = 0
	assert.Error(t, opts.Validate())

	opts = splitter.NewOptions()
	opts.ChunkOverlap = -1
	assert.Error(t, opts.Validate())

	opts = splitter.NewOptions()
	opts.ChunkOverlap = opts.ChunkSize
	assert.Error(t, opts.Validate())
}
