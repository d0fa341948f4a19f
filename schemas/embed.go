// Package schemas embeds the JSON Schema documents for song profiles and search results.
package schemas

import "embed"

// Schema file names.
const (
	Profile = "profile.schema.json"
	Results = "results.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the raw schema document with the given file name.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists the embedded schema files.
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
