package application

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailtap/stamprank/internal/domain"
	"github.com/trailtap/stamprank/internal/ports"
)

const validCatalogYAML = `version: "1.0"
signals:
  - id: level_sites
    category: site_quality
    label: Level Sites
    polarity: positive
    sort_order: 1
  - id: spotty_wifi
    category: connectivity
    label: Spotty WiFi
    polarity: improvement
    sort_order: 1
category_thresholds:
  restaurant: 150
  national_park: 75
default_threshold: 100
`

// TestLoadFromReader verifies the full parse, validate, and assemble
// path.
func TestLoadFromReader(t *testing.T) {
	loader := NewCatalogLoader()

	ref, err := loader.LoadFromReader(context.Background(), strings.NewReader(validCatalogYAML))
	require.NoError(t, err)

	require.Len(t, ref.Signals, 2)
	assert.Equal(t, "level_sites", ref.Signals[0].ID)
	assert.Equal(t, domain.PolarityImprovement, ref.Signals[1].Polarity)

	assert.Equal(t, 150, ref.Thresholds.Threshold("restaurant"))
	assert.Equal(t, 75, ref.Thresholds.Threshold("national_park"))
	assert.Equal(t, 100, ref.Thresholds.Threshold("unlisted_category"))
}

// TestLoadFromFile verifies disk loading and the not-found error.
func TestLoadFromFile(t *testing.T) {
	loader := NewCatalogLoader()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(validCatalogYAML), 0o600))

		ref, err := loader.LoadFromFile(context.Background(), path)
		require.NoError(t, err)
		assert.Len(t, ref.Signals, 2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.LoadFromFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, ports.ErrCatalogNotFound)
	})
}

// TestLoadRejectsBadData verifies strict decoding and validation
// failures.
func TestLoadRejectsBadData(t *testing.T) {
	loader := NewCatalogLoader()

	t.Run("unknown field", func(t *testing.T) {
		yaml := strings.Replace(validCatalogYAML, "default_threshold:", "default_treshold:", 1)
		_, err := loader.LoadFromReader(context.Background(), strings.NewReader(yaml))
		assert.Error(t, err)
	})

	t.Run("missing version", func(t *testing.T) {
		yaml := strings.Replace(validCatalogYAML, `version: "1.0"`, "", 1)
		_, err := loader.LoadFromReader(context.Background(), strings.NewReader(yaml))

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.True(t, validationErr.HasErrors())
	})

	t.Run("no signals", func(t *testing.T) {
		_, err := loader.LoadFromReader(context.Background(), strings.NewReader("version: \"1.0\"\nsignals: []\n"))
		assert.Error(t, err)
	})

	t.Run("invalid polarity", func(t *testing.T) {
		yaml := strings.Replace(validCatalogYAML, "polarity: positive", "polarity: celebratory", 1)
		_, err := loader.LoadFromReader(context.Background(), strings.NewReader(yaml))
		assert.Error(t, err)
	})

	t.Run("duplicate signal id", func(t *testing.T) {
		yaml := strings.Replace(validCatalogYAML, "id: spotty_wifi", "id: level_sites", 1)
		_, err := loader.LoadFromReader(context.Background(), strings.NewReader(yaml))
		assert.ErrorIs(t, err, domain.ErrDuplicateSignal)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := loader.LoadFromReader(context.Background(), strings.NewReader("version: [\n"))
		assert.Error(t, err)
	})
}

// TestLoadCaching verifies that identical contents share one cached
// reference regardless of how they are loaded.
func TestLoadCaching(t *testing.T) {
	loader := NewCatalogLoader()

	first, err := loader.LoadFromReader(context.Background(), strings.NewReader(validCatalogYAML))
	require.NoError(t, err)

	second, err := loader.LoadFromReader(context.Background(), strings.NewReader(validCatalogYAML))
	require.NoError(t, err)

	assert.Same(t, first, second)

	changed, err := loader.LoadFromReader(context.Background(),
		strings.NewReader(strings.Replace(validCatalogYAML, "sort_order: 1", "sort_order: 2", 1)))
	require.NoError(t, err)
	assert.NotSame(t, first, changed)
}

// TestLoadCancelledContext verifies that a cancelled context aborts the
// load.
func TestLoadCancelledContext(t *testing.T) {
	loader := NewCatalogLoader()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.LoadFromReader(ctx, strings.NewReader(validCatalogYAML))
	assert.ErrorIs(t, err, context.Canceled)
}
