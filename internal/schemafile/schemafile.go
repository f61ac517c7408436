/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package schemafile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pgedge-postgis-schema/internal/schema"
)

// File is a declarative schema definition: the set of tables the user
// wants, including spatial column and index options.
type File struct {
	Tables []TableDef `yaml:"tables"`
}

// TableDef describes one table in a schema definition file
type TableDef struct {
	Name       string      `yaml:"name"`
	Columns    []ColumnDef `yaml:"columns"`
	PrimaryKey []string    `yaml:"primary_key"`
	Indexes    []IndexDef  `yaml:"indexes"`
}

// ColumnDef describes one column. Spatial columns set type to geometry,
// geography or raster and may carry geometry_type and srid options.
// renamed_from marks a rename relative to an older definition file.
type ColumnDef struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	GeometryType string `yaml:"geometry_type"`
	SRID         int    `yaml:"srid"`
	NotNull      bool   `yaml:"not_null"`
	Default      string `yaml:"default"`
	Comment      string `yaml:"comment"`
	RenamedFrom  string `yaml:"renamed_from"`
}

// IndexDef describes one secondary index
type IndexDef struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique"`
	Spatial bool     `yaml:"spatial"`
}

// Load reads and validates a schema definition file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid schema file %s: %w", path, err)
	}

	return &f, nil
}

func (f *File) validate() error {
	if len(f.Tables) == 0 {
		return fmt.Errorf("no tables defined")
	}

	for _, t := range f.Tables {
		if t.Name == "" {
			return fmt.Errorf("table with empty name")
		}
		names := make(map[string]bool)
		for _, c := range t.Columns {
			if c.Name == "" || c.Type == "" {
				return fmt.Errorf("table %s: column needs both name and type", t.Name)
			}
			if names[c.Name] {
				return fmt.Errorf("table %s: duplicate column %s", t.Name, c.Name)
			}
			names[c.Name] = true
		}
		for _, idx := range t.Indexes {
			if idx.Name == "" {
				return fmt.Errorf("table %s: index with empty name", t.Name)
			}
			for _, col := range idx.Columns {
				if !names[col] {
					return fmt.Errorf("table %s: index %s references unknown column %s", t.Name, idx.Name, col)
				}
			}
		}
	}
	return nil
}

// Table finds a table definition by name
func (f *File) Table(name string) (TableDef, bool) {
	for _, t := range f.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableDef{}, false
}

// Schema converts the definition into the schema-layer table model
func (t TableDef) Schema() schema.Table {
	out := schema.Table{
		Name:       t.Name,
		PrimaryKey: t.PrimaryKey,
	}
	for _, c := range t.Columns {
		out.Columns = append(out.Columns, c.Schema())
	}
	for _, idx := range t.Indexes {
		out.Indexes = append(out.Indexes, schema.Index{
			Name:    idx.Name,
			Columns: idx.Columns,
			Unique:  idx.Unique,
			Spatial: idx.Spatial,
		})
	}
	return out
}

// Schema converts a column definition into the schema-layer column model
func (c ColumnDef) Schema() schema.Column {
	return schema.Column{
		Name:         c.Name,
		Type:         c.Type,
		GeometryType: c.GeometryType,
		SRID:         c.SRID,
		NotNull:      c.NotNull,
		Default:      c.Default,
		Comment:      c.Comment,
	}
}
