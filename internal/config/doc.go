// Package config resolves and persists the local agent configuration: the
// gateway URL, the agent's name and address, its API key and the admin key.
//
// Values are layered: an AMTP_* environment variable wins over the JSON file
// at ~/.amtp-config.json, which wins over the empty default. The file is read
// fresh on every Load and only ever changed through Save or Set.
package config
