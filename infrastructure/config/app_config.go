package config

import (
	"os"
	"strings"

	"spingest/application"
	"spingest/logging"
)

// AppConfig holds the complete runtime configuration: site and Graph
// credentials, enumeration and download options, and logging.
type AppConfig struct {
	Connection application.ConnectionConfig
	Indexer    application.IndexerConfig
	Downloader application.DownloaderConfig
	LedgerPath string
	Logging    *logging.Config
}

// LoadAppConfigFromEnv loads the complete configuration from environment
// variables. The .env file, if any, is loaded by the caller beforehand.
func LoadAppConfigFromEnv() *AppConfig {
	return &AppConfig{
		Connection: LoadConnectionConfigFromEnv(),
		Indexer:    LoadIndexerConfigFromEnv(),
		Downloader: LoadDownloaderConfigFromEnv(),
		LedgerPath: getEnvWithDefault("SP_LEDGER_PATH", "./spingest.db"),
		Logging:    LoadLoggingConfigFromEnv(),
	}
}

// LoadConnectionConfigFromEnv loads site credentials and the optional
// Graph permissions credential set.
func LoadConnectionConfigFromEnv() application.ConnectionConfig {
	cfg := application.ConnectionConfig{
		ClientID:     os.Getenv("SP_CLIENT_ID"),
		Site:         os.Getenv("SP_SITE_URL"),
		ClientSecret: os.Getenv("SP_CLIENT_SECRET"),
	}

	perms := application.PermissionsConfig{
		ApplicationID: os.Getenv("SP_PERMISSIONS_APPLICATION_ID"),
		Tenant:        os.Getenv("SP_PERMISSIONS_TENANT"),
		ClientSecret:  os.Getenv("SP_PERMISSIONS_CLIENT_SECRET"),
		AuthorityURL:  getEnvWithDefault("SP_PERMISSIONS_AUTHORITY_URL", ""),
	}
	if perms.ApplicationID != "" || perms.Tenant != "" || perms.ClientSecret != "" {
		cfg.Permissions = &perms
	}

	return cfg
}

// LoadIndexerConfigFromEnv loads enumeration options.
func LoadIndexerConfigFromEnv() application.IndexerConfig {
	return application.IndexerConfig{
		Path:      os.Getenv("SP_INDEX_PATH"),
		Recursive: getEnvBoolWithDefault("SP_INDEX_RECURSIVE", false),
		OmitFiles: getEnvBoolWithDefault("SP_OMIT_FILES", false),
		OmitPages: getEnvBoolWithDefault("SP_OMIT_PAGES", false),
		OmitLists: getEnvBoolWithDefault("SP_OMIT_LISTS", false),
	}
}

// LoadDownloaderConfigFromEnv loads retrieval options.
func LoadDownloaderConfigFromEnv() application.DownloaderConfig {
	return application.DownloaderConfig{
		DownloadDir: getEnvWithDefault("SP_DOWNLOAD_DIR", "./downloads"),
	}
}

// LoadLoggingConfigFromEnv loads logging configuration.
func LoadLoggingConfigFromEnv() *logging.Config {
	return &logging.Config{
		Level:  getEnvWithDefault("LOG_LEVEL", "info"),
		Format: getEnvWithDefault("LOG_FORMAT", "json"),
		Output: getEnvWithDefault("LOG_OUTPUT", "stderr"),
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(v string, def bool) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return parseBool(value, defaultValue)
	}
	return defaultValue
}
