// Package config loads indsearch configuration from defaults, YAML files,
// a project .env file and INDSEARCH_* environment variables.
package config
