package config

const (
	CacheBackendSQLite = "sqlite"
	CacheBackendJSON   = "json"
	CacheBackendMemory = "memory"
)

const (
	defaultDataDir        = "~/.local/share/cinerate"
	defaultLogDir         = "~/.local/share/cinerate/logs"
	defaultAPIBind        = "127.0.0.1:7488"
	defaultLookupBaseURL  = "https://search.imdbot.workers.dev"
	defaultDetailBaseURL  = "https://www.omdbapi.com"
	defaultDetailAPIKey   = "trilogy"
	defaultCacheBackend   = CacheBackendSQLite
	defaultCacheKeyPrefix = "imdb_rating_"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Lookup: Lookup{
			BaseURL: defaultLookupBaseURL,
		},
		Detail: Detail{
			BaseURL: defaultDetailBaseURL,
		},
		Cache: Cache{
			Backend:   defaultCacheBackend,
			KeyPrefix: defaultCacheKeyPrefix,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
