package output

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// TOMLFormatter formats data as TOML. TOML documents are tables, so only
// maps and structs can be encoded; list results are wrapped under "items".
type TOMLFormatter struct{}

// Format formats data as TOML.
func (f *TOMLFormatter) Format(w io.Writer, data any) error {
	doc := document(data)
	switch doc.(type) {
	case []string, []Entry:
		doc = map[string]any{"items": doc}
	}
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	return nil
}
