// Package config provides centralized configuration management for the weekly
// report generator.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// The YAML file is taken from WEEKLY_CONFIG when set, otherwise the first of
// config.yaml, configs/config.yaml or ../configs/config.yaml that exists.
//
// # Environment Variables
//
// Variables follow the pattern WEEKLY_<SECTION>_<FIELD>:
//
//	WEEKLY_SERVER_PORT=8080
//	WEEKLY_LOGGING_LEVEL=debug
//	WEEKLY_ANALYSIS_TOP_N=5
//	WEEKLY_REPORT_GREETING="Dear Team,"
//	WEEKLY_PATHS_WORK_DIR=/var/lib/weeklyreport
//
// # Validation
//
// Load validates the merged configuration with struct tags
// (go-playground/validator) and a few cross-field rules, for example the
// parity increase threshold must be above the decrease threshold.
package config
