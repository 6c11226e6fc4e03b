package config

import (
	"time"

	"github.com/spf13/viper"
)

// defaults maps each config section to its default values. Every key
// listed here is also bindable from CHWRESUME_* environment variables.
var defaults = map[string]map[string]any{
	"app": {
		"logLevel":         "info",
		"defaultFormat":    "json",
		"supportedFormats": []string{"json", "yaml", "text", "markdown"},
		"maxFileSize":      5 * 1024 * 1024, // PDFs run larger than plain text
	},
	"parser": {
		"vocabularyFile": "",
		"maxInputChars":  200000,
	},
	"server": {
		"host":           "localhost",
		"port":           "8080",
		"readTimeout":    30 * time.Second,
		"writeTimeout":   30 * time.Second,
		"idleTimeout":    120 * time.Second,
		"maxRequestSize": 5 * 1024 * 1024,
		"apiKeys":        []string{},
	},
	"server.tls": {
		"mode":                                 "disabled", // disabled, server, mutual
		"certFile":                             "",
		"keyFile":                              "",
		"caFile":                               "",
		"minVersion":                           "1.2",
		"cipherSuites":                         []string{},
		"clientAuthPolicy":                     "require", // require, request, verify
		"autoReload.enabled":                   true,
		"autoReload.fileWatcher.enabled":       true,
		"autoReload.fileWatcher.debounceDelay": time.Second,
	},
	"server.rateLimit": {
		"enabled":        false,
		"requestsPerMin": 120,
		"burstCapacity":  20,
		"byIP":           true,
		"byAPIKey":       false,
	},
	"vault": {
		"enabled":            false,
		"address":            "",
		"token":              "",
		"tokenFile":          "",
		"namespace":          "",
		"secrets.apiKeys":    "",
		"secrets.vocabulary": "",
		"secrets.tlsCerts":   "",
	},
	"observability": {
		"enabled":                    true,
		"serviceName":                "chwresume",
		"serviceVersion":             "", // falls back to the build version
		"serviceInstance":            "", // generated when empty
		"tracing.enabled":            true,
		"tracing.sampleRate":         1.0,
		"metrics.enabled":            true,
		"metrics.collectionInterval": 15 * time.Second,
		"console.enabled":            false,
		"console.prettyPrint":        true,
		"prometheus.enabled":         true,
		"prometheus.endpoint":        "/metrics",
		"prometheus.port":            "9090",
		"otlp.enabled":               false,
		"otlp.endpoint":              "http://localhost:4318",
		"otlp.insecure":              true,
		"otlp.headers":               map[string]string{},
	},
}

func setDefaults(v *viper.Viper) {
	for section, values := range defaults {
		for key, value := range values {
			v.SetDefault(section+"."+key, value)
		}
	}
}
