// Command specs-opt inspects, validates and persists configuration stores
// described by schema files.
//
// Usage:
//
//	specs-opt --schema server.yaml --config server-config.yaml store show
//	specs-opt --schema server.yaml --db ./data store set port 9090
//	specs-opt --schema server.yaml --config server-config.yaml store watch --metrics-addr :9100
package main
