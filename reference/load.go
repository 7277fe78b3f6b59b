package reference

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type fieldsFile struct {
	Sections []struct {
		Name    string     `yaml:"name" validate:"required"`
		Storage string     `yaml:"storage" validate:"required"`
		Fields  [][]string `yaml:"fields" validate:"dive,len=2,dive,required"`
	} `yaml:"sections" validate:"required,dive"`
}

type taxonomyFile struct {
	Name          string  `yaml:"name" validate:"required"`
	ReportingYear string  `yaml:"reporting_year"`
	Groups        []Group `yaml:"groups" validate:"required,dive"`
}

var defaultTables = sync.OnceValues(func() (*Tables, error) {
	return LoadFS(dataFS)
})

// Default returns the embedded tables, loading them on first use.
func Default() (*Tables, error) {
	return defaultTables()
}

// MustDefault is like Default but panics if the embedded tables are broken.
func MustDefault() *Tables {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// Load parses the embedded tables. Each call returns a fresh copy.
func Load() (*Tables, error) {
	return LoadFS(dataFS)
}

// LoadFS parses terms.yaml, fields.yaml and taxonomy.yaml from fsys. The files
// may sit at the root of fsys or under a data/ directory.
func LoadFS(fsys fs.FS) (*Tables, error) {
	if sub, err := fs.Sub(fsys, "data"); err == nil {
		if _, statErr := fs.Stat(sub, "terms.yaml"); statErr == nil {
			fsys = sub
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	var terms Terms
	if err := decodeFile(fsys, "terms.yaml", &terms, validate); err != nil {
		return nil, err
	}

	var fields fieldsFile
	if err := decodeFile(fsys, "fields.yaml", &fields, validate); err != nil {
		return nil, err
	}

	var tax taxonomyFile
	if err := decodeFile(fsys, "taxonomy.yaml", &tax, validate); err != nil {
		return nil, err
	}

	tables := &Tables{
		Terms:    terms,
		Taxonomy: NewTaxonomy(tax.Name, tax.ReportingYear, tax.Groups...),
	}
	for _, s := range fields.Sections {
		pairs := make([]FieldPair, 0, len(s.Fields))
		for _, f := range s.Fields {
			pairs = append(pairs, FieldPair{Canonical: f[0], Storage: f[1]})
		}
		tables.Sections = append(tables.Sections, NewSectionMap(s.Name, s.Storage, pairs...))
	}

	if err := tables.Check(); err != nil {
		return nil, err
	}
	return tables, nil
}

func decodeFile(fsys fs.FS, name string, out any, validate *validator.Validate) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	return nil
}
