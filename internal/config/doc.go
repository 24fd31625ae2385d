// Package config loads huntstats configuration.
//
// Values come from three layers, later layers overriding earlier ones:
//
//  1. Default()
//  2. a YAML file (HUNT_CONFIG_FILE, config.yaml or configs/config.yaml)
//  3. HUNT_* environment variables, e.g. HUNT_SERVER_PORT,
//     HUNT_PROCESSING_STD_CONVENTION, HUNT_LOGGING_LEVEL
//
// The merged result is checked with go-playground/validator struct tags.
package config
