package datastore

// Op names a store operation reported to an Observer.
type Op string

// Store operations.
const (
	OpGet     Op = "get"
	OpSet     Op = "set"
	OpAdd     Op = "add"
	OpReplace Op = "replace"
	OpRemove  Op = "remove"
	OpDecode  Op = "decode"
	OpMerge   Op = "merge"
)

// Observer receives every operation a store performs. For OpMerge the key
// is the name of the source store. err is nil on success.
type Observer interface {
	Observe(store string, op Op, key string, err error)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(store string, op Op, key string, err error)

// Observe calls f.
func (f ObserverFunc) Observe(store string, op Op, key string, err error) {
	f(store, op, key, err)
}
