package config

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".pageutil.yml"

// Config is the top-level pageutil configuration, corresponding to .pageutil.yml.
type Config struct {
	Lang    string       `yaml:"lang" koanf:"lang"`
	LangDir string       `yaml:"lang_dir" koanf:"lang_dir"`
	DataDir string       `yaml:"data_dir" koanf:"data_dir"`
	Debug   bool         `yaml:"debug" koanf:"debug"`
	Server  ServerConfig `yaml:"server" koanf:"server"`
	Site    SiteConfig   `yaml:"site" koanf:"site"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int  `yaml:"port" koanf:"port"`
	AllowAll      bool `yaml:"allow_all" koanf:"allow_all"`
	TrackRequests bool `yaml:"track_requests" koanf:"track_requests"`
}

// SiteConfig describes the front-end site that theme image URLs point at.
type SiteConfig struct {
	WWWRoot        string `yaml:"wwwroot" koanf:"wwwroot"`
	Theme          string `yaml:"theme" koanf:"theme"`
	ThemeRev       int    `yaml:"themerev" koanf:"themerev"`
	SlashArguments bool   `yaml:"slasharguments" koanf:"slasharguments"`
	SVGIcons       bool   `yaml:"svgicons" koanf:"svgicons"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Lang:    "en",
		LangDir: "lang",
		DataDir: ".pageutil",
		Server: ServerConfig{
			Port:          8080,
			TrackRequests: true,
		},
		Site: SiteConfig{
			WWWRoot:        "http://localhost",
			Theme:          "boost",
			ThemeRev:       1,
			SlashArguments: true,
			SVGIcons:       true,
		},
	}
}
