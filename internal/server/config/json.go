package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gentlepol/internal/flagx"
	"github.com/dmitrijs2005/gentlepol/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration, so both "168h" and integer nanoseconds are accepted.
// Pointer fields distinguish "absent" from the zero value.
type JsonConfig struct {
	EndpointAddrHTTP        string          `json:"endpoint_addr_http"`
	DatabaseDSN             string          `json:"database_dsn"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	BcryptCost              int             `json:"bcrypt_cost"`
	CookieName              string          `json:"cookie_name"`
	CookieSecure            *bool           `json:"cookie_secure"`
	PollInterval            *timex.Duration `json:"poll_interval"`
}

// parseJson loads configuration values from the file named by -c or -config.
// Only keys present in the file override the target. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.CookieName != "" {
		config.CookieName = c.CookieName
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.PollInterval != nil {
		config.PollInterval = c.PollInterval.Duration
	}
}
