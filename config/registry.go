package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"status-monitor/models"

	"gopkg.in/yaml.v3"
)

// DefaultComponents is used when no COMPONENTS_FILE is configured.
var DefaultComponents = []models.ComponentConfig{
	{ID: "comp_api", Name: "API", URL: "https://api.example.com/health", CheckType: models.CheckDeep, Method: "GET"},
	{ID: "comp_web", Name: "Website", URL: "https://www.example.com/", CheckType: models.CheckShallow, Method: "HEAD"},
	{ID: "comp_auth", Name: "Authentication", URL: "https://auth.example.com/health", CheckType: models.CheckDeep, Method: "GET"},
	{ID: "comp_cdn", Name: "CDN", URL: "https://cdn.example.com/", CheckType: models.CheckShallow, Method: "HEAD"},
}

type registryFile struct {
	Components []models.ComponentConfig `yaml:"components"`
}

// LoadRegistry reads the component registry from path, or returns the
// default registry when path is empty. The returned order is the display order.
func LoadRegistry(path string) ([]models.ComponentConfig, error) {
	if path == "" {
		components := make([]models.ComponentConfig, len(DefaultComponents))
		copy(components, DefaultComponents)
		return components, ValidateRegistry(components)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes a YAML registry and applies defaults.
func ParseRegistry(data []byte) ([]models.ComponentConfig, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	for i := range f.Components {
		c := &f.Components[i]
		if c.CheckType == "" {
			c.CheckType = models.CheckShallow
		}
		c.Method = strings.ToUpper(c.Method)
		if c.Method == "" {
			c.Method = "GET"
		}
	}

	if err := ValidateRegistry(f.Components); err != nil {
		return nil, err
	}
	return f.Components, nil
}

// ValidateRegistry checks ids, URLs, check types and methods.
func ValidateRegistry(components []models.ComponentConfig) error {
	if len(components) == 0 {
		return errors.New("registry has no components")
	}

	seen := make(map[string]struct{}, len(components))
	var errs []error
	for i, c := range components {
		if c.ID == "" {
			errs = append(errs, fmt.Errorf("component %d: id is required", i))
			continue
		}
		if _, dup := seen[c.ID]; dup {
			errs = append(errs, fmt.Errorf("component %s: duplicate id", c.ID))
		}
		seen[c.ID] = struct{}{}

		if c.Name == "" {
			errs = append(errs, fmt.Errorf("component %s: name is required", c.ID))
		}
		u, err := url.Parse(c.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("component %s: url must be http(s)", c.ID))
		}
		switch c.CheckType {
		case models.CheckDeep:
			if c.Method != "GET" {
				errs = append(errs, fmt.Errorf("component %s: deep checks need GET", c.ID))
			}
		case models.CheckShallow:
			if c.Method != "GET" && c.Method != "HEAD" {
				errs = append(errs, fmt.Errorf("component %s: method must be GET or HEAD", c.ID))
			}
		default:
			errs = append(errs, fmt.Errorf("component %s: unknown checkType %q", c.ID, c.CheckType))
		}
	}
	return errors.Join(errs...)
}
