package logger

import (
	"github.com/specs-feup/specs-go/pkg/datastore"
)

type storeObserver struct {
	l Logger
}

// StoreObserver returns a datastore observer that logs successful
// operations at debug level and failures at warn level.
func StoreObserver(l Logger) datastore.Observer {
	return storeObserver{l: l}
}

func (o storeObserver) Observe(store string, op datastore.Op, key string, err error) {
	if err != nil {
		o.l.Warn("store operation failed", "store", store, "op", string(op), "key", key, "error", err)
		return
	}
	o.l.Debug("store operation", "store", store, "op", string(op), "key", key)
}
