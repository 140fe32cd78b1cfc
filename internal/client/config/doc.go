// Package config loads runtime configuration for the Vimesta CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. An optional YAML or JSON file named by -c / --config, chosen by its
//     extension.
//  3. VIMESTA_* environment variables (VIMESTA_API_URL, VIMESTA_TRANSPORT,
//     ...). envconfig also falls back to the unprefixed name.
//  4. Command-line flags bound with BindFlags.
//
// Durations in files accept strings such as "3s" or integer nanoseconds:
//
//	api_url: https://vimesta.example/api
//	transport: chunked
//	chunk_size: 5242880
//	upload_timeout: 10m
//	allowed_extensions: [jpg, png, mp4]
package config
