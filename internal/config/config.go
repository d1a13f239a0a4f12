package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	CacheFile        string        // path to the cached directory file
	BuiltinFile      string        // optional path overriding the embedded builtin directory
	PrefsFile        string        // optional preferences file (endpoint override, offline mode)
	EndpointOverride string        // optional user-configured endpoint, always wins over the directory
	OfflineMode      bool          // start with offline mode enabled
	RefreshInterval  time.Duration // interval between directory refresh cycles (default: 24h)
	UpdateTimeout    time.Duration // max time one refresh cycle may wait for the list (default: 30s)

	// Redis (message-center transport)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
	RequestChannel      string        // channel the directory request is published to
	DirectoryChannel    string        // channel directory payloads arrive on
}

func Load() *Config {
	return &Config{
		// Server settings
		ListenAddr:      getenv("COMPASS_LISTEN_ADDR", ":8080"),
		ShutdownTimeout: mustDuration("COMPASS_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("COMPASS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("COMPASS_PRETTY_LOG", true),

		// Directory
		CacheFile:        getenv("COMPASS_CACHE_FILE", "/var/lib/compassd/directory.properties"),
		BuiltinFile:      getenv("COMPASS_BUILTIN_FILE", ""),
		PrefsFile:        getenv("COMPASS_PREFS_FILE", ""),
		EndpointOverride: getenv("COMPASS_ENDPOINT_OVERRIDE", ""),
		OfflineMode:      mustBool("COMPASS_OFFLINE_MODE", false),
		RefreshInterval:  mustDuration("COMPASS_REFRESH_INTERVAL", 24*time.Hour),
		UpdateTimeout:    mustDuration("COMPASS_UPDATE_TIMEOUT", 30*time.Second),

		// Redis settings
		RedisAddr:           requireEnv("COMPASS_REDIS_ADDR"),
		RedisUser:           getenv("COMPASS_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("COMPASS_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("COMPASS_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
		RequestChannel:      getenv("COMPASS_REQUEST_CHANNEL", "compass:directory:request"),
		DirectoryChannel:    getenv("COMPASS_DIRECTORY_CHANNEL", "compass:directory"),
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
