// Package datastore provides typed configuration keys and the stores that
// hold their values.
//
// A Key[T] names a slot and carries optional capabilities: a lazily
// evaluated default, a text codec, read/write hooks, a copy function and a
// panel provider. Keys are immutable values; the With* methods return
// modified copies.
//
// A Store keeps values type-erased by key name. Typed access goes through
// the package functions Set, Get, Add, Replace and friends:
//
//	port := datastore.NewKey[int]("port").WithDefaultValue(8080)
//	s := datastore.New("server")
//	datastore.Set(s, port, 9090)
//	v, err := datastore.Get(s, port) // 9090, nil
//
// A Definition lists the keys a store is expected to hold and can validate
// a store against them.
package datastore
