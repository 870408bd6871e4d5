// Package config loads the service configuration from a YAML file with
// strict ${VAR} environment expansion, so credentials never have to live
// in the file itself.
package config
