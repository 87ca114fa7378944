// Package config provides centralized configuration management for the
// real estate dashboard. It layers defaults, an optional YAML file and
// environment variables into a single validated Config.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (config.yaml, configs/config.yaml or ESTATE_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ESTATE_<SECTION>_<FIELD>:
//
//	ESTATE_SERVER_PORT=8080
//	ESTATE_LOGGING_LEVEL=debug
//	ESTATE_PATHS_DATASET_FILE=real_estate_sample_30k.csv
//	ESTATE_DATASET_SENTINELS=-1,Unknown
//	ESTATE_DATASET_CATEGORY_GROUPS=Family:Family
//
// # Dataset rules
//
// The sentinel markers, dropped columns and category grouping rules used by
// the preparation pipeline live in DatasetConfig so they can change without
// touching the pipeline itself.
//
// # Path Management
//
// Paths resolves data, export and log locations against a base directory
// (the executable directory by default):
//
//	paths, err := cfg.ResolvePaths()
//	exportPath := paths.GetExportPath("prepared.xlsx")
package config
