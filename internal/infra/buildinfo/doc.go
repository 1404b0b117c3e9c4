// Package buildinfo reports the version of the specs-opt binary.
//
// Release builds inject the values through ldflags:
//
//	go build -ldflags "-X github.com/specs-feup/specs-go/internal/infra/buildinfo.Version=v1.2.0"
//
// Values left unset are taken from the module build information embedded
// by the Go toolchain.
package buildinfo
