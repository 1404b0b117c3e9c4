// Package command defines the specs-opt commands.
//
// specs-opt works on stores described by a schema file:
//
//	specs-opt -s server.yaml -c server-config.yaml store show
//	specs-opt -s server.yaml --db ./data store save
//	specs-opt -s server.yaml -c server-config.yaml store watch --metrics-addr :9100
//
// Store values are resolved from, in increasing priority: the database
// (--db), the configuration file (--config), environment variables
// (--env-prefix) and --set overrides.
package command
