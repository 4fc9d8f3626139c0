package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// Deployment scripts overwrite sentinel.yaml with the target host's process
// table before compiling.
//
//go:embed sentinel.yaml
var embeddedConfig []byte
