// Package application assembles the review signal engine: reference
// data loading and the facade coordinating grouping and ranking over
// feed snapshots.
package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/trailtap/stamprank/internal/domain"
	"github.com/trailtap/stamprank/internal/ports"
)

// CatalogFile is the YAML schema for the engine's reference data: the
// signal catalog and the category threshold table.
type CatalogFile struct {
	// Version specifies the reference data schema version.
	Version string `yaml:"version" validate:"required"`

	// Signals defines every taggable signal.
	Signals []domain.SignalDefinition `yaml:"signals" validate:"required,min=1,dive"`

	// CategoryThresholds overrides the minimum qualifying-tap count per
	// category. Categories absent here use DefaultThreshold.
	CategoryThresholds map[string]int `yaml:"category_thresholds" validate:"omitempty,dive,min=1,max=10000"`

	// DefaultThreshold replaces the built-in default of 100 when set.
	DefaultThreshold int `yaml:"default_threshold" validate:"omitempty,min=1,max=10000"`
}

// Reference is the loaded, validated reference data ready for engine
// assembly. Callers build a catalog from Signals and pass Thresholds to
// the engine.
type Reference struct {
	// Signals are the validated catalog definitions in file order.
	Signals []domain.SignalDefinition

	// Thresholds is the assembled category threshold table.
	Thresholds domain.CategoryThresholds
}

// CatalogLoader parses, validates, and caches reference data files.
// Identical file contents share one cached Reference, and concurrent
// loads of the same contents are collapsed into a single parse.
type CatalogLoader struct {
	// validator performs struct field validation for the file schema
	// and every nested signal definition.
	validator *validator.Validate

	// cache stores loaded references indexed by SHA256 hash of the
	// source bytes. Cached references must not be mutated.
	cache map[string]*Reference
	// cacheMu provides thread-safe access to the cache map.
	cacheMu sync.RWMutex
	// sf prevents duplicate parsing when multiple goroutines load the
	// same reference data simultaneously.
	sf singleflight.Group
}

// NewCatalogLoader creates a loader with validation capabilities and an
// empty cache.
func NewCatalogLoader() *CatalogLoader {
	return &CatalogLoader{
		validator: validator.New(),
		cache:     make(map[string]*Reference),
	}
}

// LoadFromFile loads reference data from a YAML file on disk.
func (cl *CatalogLoader) LoadFromFile(ctx context.Context, path string) (*Reference, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, ports.NewConfigError(path, fmt.Errorf("%w: %v", ports.ErrCatalogNotFound, err))
	}
	return cl.load(ctx, data)
}

// LoadFromReader loads reference data from a YAML stream.
func (cl *CatalogLoader) LoadFromReader(ctx context.Context, r io.Reader) (*Reference, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ports.NewConfigError("reader", err)
	}
	return cl.load(ctx, data)
}

func (cl *CatalogLoader) load(ctx context.Context, data []byte) (*Reference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if ref, ok := cl.getCached(hash); ok {
		return ref, nil
	}

	v, err, _ := cl.sf.Do(hash, func() (any, error) {
		// Re-check inside singleflight to handle the race between the
		// cache check and group execution.
		if ref, ok := cl.getCached(hash); ok {
			return ref, nil
		}

		ref, err := cl.parse(data)
		if err != nil {
			return nil, err
		}

		cl.cacheMu.Lock()
		cl.cache[hash] = ref
		cl.cacheMu.Unlock()

		return ref, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Reference), nil
}

func (cl *CatalogLoader) getCached(hash string) (*Reference, bool) {
	cl.cacheMu.RLock()
	defer cl.cacheMu.RUnlock()
	ref, ok := cl.cache[hash]
	return ref, ok
}

// parse decodes and validates a reference data file. Decoding is
// strict: unknown fields are rejected so typos fail loudly.
func (cl *CatalogLoader) parse(data []byte) (*Reference, error) {
	var file CatalogFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse reference data: %w", err)
	}

	if err := cl.validator.Struct(file); err != nil {
		validationErr := domain.NewValidationError("catalog file")
		validationErr.AddError(err.Error())
		return nil, validationErr
	}

	seen := make(map[string]struct{}, len(file.Signals))
	for _, def := range file.Signals {
		if _, dup := seen[def.ID]; dup {
			return nil, domain.NewCatalogError(def.ID, "load", domain.ErrDuplicateSignal)
		}
		seen[def.ID] = struct{}{}
	}

	return &Reference{
		Signals:    file.Signals,
		Thresholds: domain.NewCategoryThresholds(file.CategoryThresholds, file.DefaultThreshold),
	}, nil
}
