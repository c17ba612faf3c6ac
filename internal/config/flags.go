package config

import "flag"

// Flags holds command-line overrides.
type Flags struct {
	ConfigPath string
	Debug      bool
	Addr       string
	Graph      string
	Source     string
	NoTray     bool
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Addr, "addr", "", "HTTP listen address")
	fs.StringVar(&f.Graph, "graph", "", "Path to graph_data.json")
	fs.StringVar(&f.Source, "source", "", "Landmark source: camera or websocket")
	fs.BoolVar(&f.NoTray, "no-tray", false, "Run without the system tray")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Addr != "" {
		cfg.Server.Addr = f.Addr
	}
	if f.Graph != "" {
		cfg.Scene.GraphFile = f.Graph
	}
	if f.Source != "" {
		cfg.Sensor.Source = f.Source
	}
	if f.NoTray {
		cfg.Tray.Enabled = false
	}
}
