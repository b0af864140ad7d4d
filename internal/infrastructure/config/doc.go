// Package config handles loading and validating lamp sequencer configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields (including outlet map uniqueness)
//   - Default value handling
//
// The outlet map (lamp name to physical outlet index) lives here because
// it is static for the lifetime of the process: it is loaded once at
// startup and never re-derived or hot-reloaded.
//
// Security Considerations:
//   - Sensitive values (broker passwords, tokens) should be set via
//     environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
