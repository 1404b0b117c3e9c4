package datastore

import (
	"fmt"
	"strings"
)

const nestedIndent = "   "

// FormatKeys renders one key per line, each terminated by a newline.
func FormatKeys(keys []AnyKey) string {
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func formatKey(k AnyKey) string {
	var b strings.Builder
	b.WriteString(k.Name())
	b.WriteString(" (")
	b.WriteString(k.TypeName())

	def, ok, err := k.DefaultAny()
	if err != nil || !ok {
		b.WriteByte(')')
		return b.String()
	}

	if nested, isStore := def.(*Store); isStore {
		nestedDef, hasDef := nested.Definition()
		if !hasDef {
			b.WriteString(" - Undefined DataStore)")
			return b.String()
		}
		b.WriteByte(')')
		for _, line := range strings.Split(strings.TrimSuffix(FormatKeys(nestedDef.keys), "\n"), "\n") {
			if line == "" {
				continue
			}
			b.WriteString("\n" + nestedIndent + line)
		}
		return b.String()
	}

	text := formatValue(def)
	if strings.Contains(text, "\n") {
		b.WriteString(" - has default value, but spans several lines)")
		return b.String()
	}
	b.WriteString(" = " + text + ")")
	return b.String()
}

func formatValue(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}
