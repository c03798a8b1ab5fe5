// Package config handles loading and parsing the shelver configuration file.
//
// # Overview
//
// The config file names the Audiobookshelf server to browse, the API token,
// the library to open and the HTTP and logging knobs. Everything is optional:
// shelver starts against a local server with defaults when no file exists.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shelver/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. SHELVER_TOKEN, when set, replaces the token in every case
//
// # Default Values
//
//   - Server: http://127.0.0.1:13378
//   - Request timeout: 10 seconds
//   - Retries per request: 2
//   - Log level: info
//   - Log file: ~/.local/state/shelver/shelver.log (used while the TUI runs)
//
// # TOML Format
//
//	server_url = "https://abs.example.com"
//	token = "..."
//	library = "Audiobooks"   # id or name; empty picks the first book library
//	request_timeout = 10     # seconds
//	retry_max = 2
//	log_level = "info"
//	log_file = "~/.local/state/shelver/shelver.log"
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML parse errors and a negative retry_max. Missing config
// files are not an error.
package config
