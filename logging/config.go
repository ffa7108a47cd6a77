package logging

import "time"

// Config tunes the event router. MinimumSeverity is the global floor;
// CategorySeverity raises it for one gameplay domain (CategoryCombat,
// CategoryEconomy, CategoryWave, CategoryAuth, CategoryNetwork,
// CategorySystem) without touching the rest.
type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	CategorySeverity map[string]Severity
	Fields           map[string]any
	JSON             JSONConfig
	Console          ConsoleConfig
	DropWarnInterval time.Duration
}

type JSONConfig struct {
	FilePath      string
	MaxBatch      int
	FlushInterval time.Duration
}

type ConsoleConfig struct {
	UseColor bool
}

func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		// Connection churn is the noisiest category on a busy arena;
		// only its warnings surface by default.
		CategorySeverity: map[string]Severity{
			CategoryNetwork: SeverityWarn,
		},
		JSON: JSONConfig{
			MaxBatch:      32,
			FlushInterval: 2 * time.Second,
		},
	}
}

// SeverityFor resolves the effective floor for a category. Overrides only
// raise the floor, never lower it below the global minimum.
func (c Config) SeverityFor(category string) Severity {
	if override, ok := c.CategorySeverity[category]; ok && override > c.MinimumSeverity {
		return override
	}
	return c.MinimumSeverity
}

func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
