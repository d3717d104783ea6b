package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	noServe bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithoutServer builds the indices and returns without starting the
// MCP server or the watcher. One-shot subcommands use this.
func WithoutServer() Option {
	return func(a *application) {
		a.noServe = true
	}
}
