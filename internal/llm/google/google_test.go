package google

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeKnownModel(t *testing.T) {
	c := New("gemini-1.5-pro", "test-key")

	desc := c.Describe()
	assert.Equal(t, "google", desc.Provider)
	assert.Equal(t, "gemini-1.5-pro", desc.Name)
	assert.Equal(t, 2097152, desc.MaxContextLength)
	assert.Equal(t, 0.00125, desc.CostPer1KTokens)
}

func TestDescribeUnknownModelFallsBack(t *testing.T) {
	c := New("gemini-experimental", "test-key")

	desc := c.Describe()
	assert.Equal(t, 32768, desc.MaxContextLength)
	assert.Equal(t, 0.0005, desc.CostPer1KTokens)
}

func TestNewDefaultsModel(t *testing.T) {
	c := New("", "test-key")
	assert.Equal(t, "gemini-1.5-flash", c.Describe().Name)
}

func TestFloat32Ptr(t *testing.T) {
	p := float32Ptr(0.7)
	require.NotNil(t, p)
	assert.Equal(t, float32(0.7), *p)
}
