// Package config loads and validates the service configuration.
//
// Configuration comes from a YAML file, with defaults applied for omitted
// fields and optional environment variable overrides using the
// EMOTION_SECTION_FIELD naming convention. Environment variables always
// win over file values.
//
// Minimal configuration file:
//
//	server:
//	  listen_address: "0.0.0.0:8000"
//	classifier:
//	  base_url: "http://classifier:8500"
//	retention:
//	  days: 30
//	  prune_schedule: "@daily"
//
// There is no hot reload. Retention and classifier settings are fixed for
// the lifetime of the process; changing them requires a restart.
package config
