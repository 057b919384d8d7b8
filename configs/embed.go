// Package configs provides the configuration templates written by
// `indsearch config init`.
//
// Templates are embedded at build time so every distribution carries them.
//
//   - project-config.example.yaml: .indsearch.yaml next to the catalog
//     (catalog source, ranking, documentation links)
//   - user-config.example.yaml: ~/.config/indsearch/config.yaml
//     (server address and log level for this machine)
//
// Precedence is described in internal/config Load.
package configs

import _ "embed"

// ProjectConfigTemplate is the template for .indsearch.yaml.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

// UserConfigTemplate is the template for the user configuration file.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string
