package config

import "sort"

var Presets = map[string]*Config{
	"substrate": preset(func(c *Config) {
		c.Injection.Period = 0
		c.Steps = 2000
	}),
	"deposition": preset(func(c *Config) {
		c.Injection.Velocity = 2.0
		c.Injection.Period = 200
		c.Steps = 6000
		c.SampleEvery = 50
	}),
	"hot": preset(func(c *Config) {
		c.Temperature = 1200
		c.Dissipation = 1.0
		c.Injection.Period = 0
		c.Steps = 3000
	}),
}

func preset(apply func(*Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
