// Package config loads runtime configuration for the SkillSwap CLI.
//
// # Sources and precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. The format follows
//     the extension: .json, .yaml or .yml.
//  3. Environment variables prefixed SKILLSWAP_, after loading an optional
//     .env file from the working directory.
//  4. Command-line flags.
//
// # Flags
//
//	-a string   backend base URL
//	-d string   token database path
//	-t int      request timeout (seconds)
//	-i int      online status check interval (seconds)
//	-r float    request rate limit per second
//	-l string   log level
//
// # Environment
//
//	SKILLSWAP_SERVER_URL, SKILLSWAP_DB_PATH, SKILLSWAP_REQUEST_TIMEOUT,
//	SKILLSWAP_ONLINE_CHECK_INTERVAL, SKILLSWAP_RATE_LIMIT,
//	SKILLSWAP_LOG_LEVEL, SKILLSWAP_LOG_FORMAT
//
// Durations in the environment use time.ParseDuration syntax ("15s").
//
// # File schema
//
// Durations use timex.Duration, so they may be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8000",
//	  "token_db_path": "skillswap.db",
//	  "request_timeout": "15s",
//	  "online_check_interval": "3s",
//	  "rate_limit": 5,
//	  "log_level": "info",
//	  "log_format": "json"
//	}
package config
