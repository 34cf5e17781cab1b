// Package config loads the erpdesk configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/erpdesk/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing or blank, use defaults
//
// # Configuration Fields
//
//	api_base        = "http://127.0.0.1:8080"   # ERP backend
//	api_token       = ""                        # bearer token, or $ERPDESK_API_TOKEN
//	storage_dir     = "~/.local/state/erpdesk/storage"
//	redis_addr      = ""                        # set to share the menu cache via Redis
//	redis_db        = 0
//	cache_minutes   = 30                        # menu cache lifetime
//	dev_path_prefix = "/src"                    # stripped from menu paths; "" disables
//	log_level       = "info"
//	log_format      = "text"                    # or "json"
//	log_file        = "~/.local/state/erpdesk/erpdesk.log"  # or stderr, stdout, none
//	teardown_ms     = 300                       # modal close animation window
//	max_tabs        = 0                         # 0 means unlimited
//
// dev_path_prefix and teardown_ms distinguish "absent" from an explicit
// empty or zero value, so both can be switched off.
//
// # Path Expansion
//
// Paths starting with ~ are expanded to the user's home directory and made
// absolute. Expansion failures fall back to the unexpanded value.
//
// # Error Handling
//
// A missing file is not an error. Unreadable files, invalid TOML and negative
// numeric settings are reported with wrapped errors:
//
//   - "open config: permission denied"
//   - "parse config: toml: ..."
//   - "cache_minutes must not be negative"
package config
