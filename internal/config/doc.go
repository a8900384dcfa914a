// Package config loads application configuration.
//
// Values are layered: Default() first, then an optional YAML file
// (config.yaml, configs/config.yaml, or the file named by CLASSPULSE_CONFIG),
// then CLASSPULSE_* environment variables. For example:
//
//	CLASSPULSE_SERVER_PORT=9090
//	CLASSPULSE_ANALYTICS_SUBJECTS=English,Kiswahili,Mathematics
//	CLASSPULSE_LOGGING_LEVEL=debug
//
// The analytics subject list must be non-empty; Load rejects a
// configuration without subjects.
package config
