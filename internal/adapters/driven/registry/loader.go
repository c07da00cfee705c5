// Package registry loads apis.yml, the file that declares which API specs
// and documentation directories to ingest.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/alexandria/internal/core/domain"
	"github.com/custodia-labs/alexandria/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.RegistryLoader = (*Loader)(nil)

// DefaultFileName is the registry file looked up when none is given.
const DefaultFileName = "apis.yml"

type file struct {
	APIs *[]apiEntry `yaml:"apis"`
	Docs *[]docEntry `yaml:"docs"`
}

type apiEntry struct {
	Name string `yaml:"name" validate:"required"`
	Spec string `yaml:"spec" validate:"required"`
	Docs string `yaml:"docs"`
}

type docEntry struct {
	Name string `yaml:"name" validate:"required"`
	Path string `yaml:"path" validate:"required"`
}

// Loader reads registry files.
type Loader struct {
	validate *validator.Validate
}

// NewLoader creates a registry loader.
func NewLoader() *Loader {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})
	return &Loader{validate: v}
}

// Load reads the registry at path. API entries come first, in file order,
// followed by docs entries.
func (l *Loader) Load(path string) ([]domain.RegistryEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: Invalid apis.yml: %s: %v", domain.ErrInvalidInput, path, err)
	}
	if f.APIs == nil && f.Docs == nil {
		return nil, fmt.Errorf("%w: Invalid apis.yml: expected top-level \"apis\" or \"docs\" array in %s",
			domain.ErrInvalidInput, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving registry path: %w", err)
	}
	baseDir := filepath.Dir(abs)

	var entries []domain.RegistryEntry
	seen := make(map[string]string)

	if f.APIs != nil {
		for i, e := range *f.APIs {
			if err := l.check(e, fmt.Sprintf("apis.yml entry %d", i), e.Name); err != nil {
				return nil, err
			}
			if _, dup := seen[e.Name]; dup {
				return nil, fmt.Errorf("%w: apis.yml: duplicate name %q within apis section",
					domain.ErrInvalidInput, e.Name)
			}
			seen[e.Name] = "apis"

			entry := domain.RegistryEntry{Name: e.Name, SpecPath: resolve(baseDir, e.Spec)}
			if e.Docs != "" {
				entry.DocsPath = resolve(baseDir, e.Docs)
			}
			entries = append(entries, entry)
		}
	}

	if f.Docs != nil {
		for i, e := range *f.Docs {
			if err := l.check(e, fmt.Sprintf("apis.yml docs entry %d", i), e.Name); err != nil {
				return nil, err
			}
			if section, dup := seen[e.Name]; dup {
				return nil, fmt.Errorf("%w: apis.yml: duplicate name %q (appears in both %s and docs sections)",
					domain.ErrInvalidInput, e.Name, section)
			}
			seen[e.Name] = "docs"

			entries = append(entries, domain.RegistryEntry{Name: e.Name, DocsPath: resolve(baseDir, e.Path)})
		}
	}

	return entries, nil
}

// check validates one entry and names the first missing field.
func (l *Loader) check(entry any, label, name string) error {
	err := l.validate.Struct(entry)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validating %s: %w", label, err)
	}

	field := fieldErrs[0].Field()
	if field != "name" && name != "" {
		label = fmt.Sprintf("%s (%s)", label, name)
	}
	return fmt.Errorf("%w: %s: missing or invalid %q", domain.ErrInvalidInput, label, field)
}

func resolve(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}
