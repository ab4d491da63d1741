package profile

import (
	"fmt"
	"strings"
)

// MaxSamples caps how many random documents a profile carries.
const MaxSamples = 5

const (
	noSchema  = "No schema information available.\n"
	noSamples = "No sample documents available.\n"
)

// Field is a single name/value pair. For the schema sketch Value holds the
// observed type name; for sample documents it holds the rendered value.
type Field struct {
	Name  string
	Value string
}

// Profile is the textual summary of a collection's shape, size and samples.
type Profile struct {
	Database   string
	Collection string
	DBType     string
	Schema     []Field
	Count      int64
	Samples    [][]Field
}

// IsEmpty reports whether the collection had no document to infer a schema from.
func (p Profile) IsEmpty() bool {
	return len(p.Schema) == 0
}

// Render produces the paragraph stored in the context index.
func (p Profile) Render() string {
	var schema strings.Builder
	schema.WriteString("The schema of this collection includes:\n")
	if len(p.Schema) == 0 {
		schema.WriteString(noSchema)
	}
	for _, f := range p.Schema {
		fmt.Fprintf(&schema, "- %s: %s\n", f.Name, f.Value)
	}

	total := fmt.Sprintf("The total number of documents in this collection is %d.\n", p.Count)

	var samples strings.Builder
	samples.WriteString("Here are some sample documents from this collection:\n")
	if len(p.Samples) == 0 {
		samples.WriteString(noSamples)
	}
	for i, doc := range p.Samples {
		fmt.Fprintf(&samples, "Document %d:\n", i+1)
		for _, f := range doc {
			fmt.Fprintf(&samples, "  - %s: %s\n", f.Name, f.Value)
		}
		samples.WriteString("\n")
	}

	return fmt.Sprintf(
		"This paragraph describes the MongoDB collection '%s' in the database '%s'. %s %s %sThe database type is %s.",
		p.Collection, p.Database, schema.String(), total, samples.String(), p.DBType,
	)
}
