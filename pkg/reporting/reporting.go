// Package reporting defines message types and the report categories they
// belong to.
package reporting

import (
	"github.com/specs-feup/specs-go/pkg/enumhelper"
)

// Category is the severity class of a message.
type Category int

// Report categories.
const (
	CategoryError Category = iota
	CategoryWarning
	CategoryInformation
)

func (c Category) String() string {
	switch c {
	case CategoryError:
		return "ERROR"
	case CategoryWarning:
		return "WARNING"
	case CategoryInformation:
		return "INFORMATION"
	default:
		return "UNKNOWN"
	}
}

// Categories resolves category names. "INFO" is accepted for
// INFORMATION.
var Categories = enumhelper.NewLazy([]Category{CategoryError, CategoryWarning, CategoryInformation})

func init() {
	Categories().AddAlias("INFO", CategoryInformation)
}

// MessageType names a kind of message and its category.
type MessageType interface {
	Name() string
	Category() Category
}

type messageType struct {
	name     string
	category Category
}

// NewMessageType creates a message type.
func NewMessageType(name string, category Category) MessageType {
	return messageType{name: name, category: category}
}

func (m messageType) Name() string       { return m.name }
func (m messageType) Category() Category { return m.category }
func (m messageType) String() string     { return m.name }

// Default message types.
var (
	Info    = NewMessageType("Info", CategoryInformation)
	Warning = NewMessageType("Warning", CategoryWarning)
	Error   = NewMessageType("Error", CategoryError)
)

// IsError reports whether m belongs to the error category.
func IsError(m MessageType) bool {
	return m.Category() == CategoryError
}
