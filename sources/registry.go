// Package sources maps product-listing URLs to the platform they belong
// to. The registry is plain data loaded once at startup; classification
// is hostname matching, nothing more.
package sources

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/marketlens/go-scrape-products/models"
	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var registryYAML []byte

var (
	// ErrInvalidURL marks input that does not parse as an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrUnsupportedSource marks a valid URL whose domain is not registered.
	ErrUnsupportedSource = errors.New("unsupported domain")
)

// Registry holds the ordered source descriptor table. First match wins,
// so declaration order in the data file is significant.
type Registry struct {
	descriptors []models.SourceDescriptor
	byID        map[string]models.SourceDescriptor
}

type registryFile struct {
	Sources []models.SourceDescriptor `yaml:"sources"`
}

// Load parses a registry from YAML data.
func Load(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse source registry: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("source registry is empty")
	}

	byID := make(map[string]models.SourceDescriptor, len(file.Sources))
	for _, desc := range file.Sources {
		if desc.ID == "" || desc.DisplayName == "" || len(desc.DomainPatterns) == 0 {
			return nil, fmt.Errorf("incomplete source descriptor %q", desc.ID)
		}
		if _, ok := byID[desc.ID]; ok {
			return nil, fmt.Errorf("duplicate source id %q", desc.ID)
		}
		byID[desc.ID] = desc
	}

	return &Registry{descriptors: file.Sources, byID: byID}, nil
}

var defaultRegistry = func() *Registry {
	r, err := Load(registryYAML)
	if err != nil {
		panic(fmt.Sprintf("sources: embedded registry: %v", err))
	}
	return r
}()

// Default returns the registry built from the embedded descriptor table.
func Default() *Registry {
	return defaultRegistry
}

// Classify parses rawURL and matches its hostname against the registry.
// It returns ErrInvalidURL for malformed input and ErrUnsupportedSource
// for valid URLs outside the registry; it never panics on bad input.
func (r *Registry) Classify(rawURL string) (models.SourceDescriptor, error) {
	host, err := hostOf(rawURL)
	if err != nil {
		return models.SourceDescriptor{}, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	for _, desc := range r.descriptors {
		for _, pattern := range desc.DomainPatterns {
			if matchesDomain(host, pattern) {
				return desc, nil
			}
		}
	}
	return models.SourceDescriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedSource, host)
}

// IsSupported reports whether rawURL belongs to a registered source.
// Malformed input yields false.
func (r *Registry) IsSupported(rawURL string) bool {
	_, err := r.Classify(rawURL)
	return err == nil
}

// Supported returns a copy of the descriptor table keyed by source id.
func (r *Registry) Supported() map[string]models.SourceDescriptor {
	out := make(map[string]models.SourceDescriptor, len(r.byID))
	for id, desc := range r.byID {
		out[id] = desc
	}
	return out
}

// Host extracts the lowercased hostname of an absolute http(s) URL.
func Host(rawURL string) (string, error) {
	return hostOf(rawURL)
}

func hostOf(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", fmt.Errorf("missing host")
	}
	return host, nil
}

// matchesDomain accepts the pattern itself and any of its subdomains.
func matchesDomain(host, pattern string) bool {
	pattern = strings.ToLower(pattern)
	return host == pattern || strings.HasSuffix(host, "."+pattern)
}
