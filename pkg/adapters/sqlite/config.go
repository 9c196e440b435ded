package sqlite

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds SQLite-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Pragmas are executed after the connection is opened (e.g. "cache_size = -64000").
	Pragmas []string `mapstructure:"pragmas"`

	// BusyTimeoutMS sets PRAGMA busy_timeout when positive.
	BusyTimeoutMS int `mapstructure:"busy_timeout_ms"`
}

// ParseParams decodes raw engine parameters into Params.
func ParseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}
	if err := mapstructure.WeakDecode(raw, p); err != nil {
		return nil, fmt.Errorf("invalid sqlite params: %w", err)
	}
	return p, nil
}
