package milvusopts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	milvusopts "github.com/kart-io/hermes/pkg/options/milvus"
)

func TestValidateDefaults(t *testing.T) {
	assert.Empty(t, milvusopts.NewOptions().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	opts := milvusopts.NewOptions()
	opts.Address = ""
	opts.Collection = ""
	opts.EmbeddingDim = 0
	opts.Metric = "hamming"
	opts.TopK = 0
	opts.Timeout = 0

	errs := opts.Validate()
	assert.Len(t, errs, 6)
}

func TestValidateNilReceiver(t *testing.T) {
	var opts *milvusopts.Options
	assert.Empty(t, opts.Validate())
}
