package gen

import (
	"go/token"
	"runtime"
)

// Config holds the code generation configuration.
type Config struct {
	// Package is the import path of the generated root package.
	Package string
	// Target is the directory the generated files are written to.
	Target string
	// Header is written at the top of each generated file.
	Header string
	// Workers bounds the number of files written in parallel.
	Workers int
}

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithPackage sets the import path of the generated root package.
// The last path element must be a valid Go identifier.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", pkg, "package path cannot be empty")
		}
		if name := packageName(pkg); !token.IsIdentifier(name) {
			return NewConfigError("Package", pkg, "last path element is not a valid package name")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", dir, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithWorkers sets the number of parallel file writers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// NewConfig creates a new Config with the given options.
// Package and Target are required.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Header:  "Code generated by schemagraph, DO NOT EDIT.",
		Workers: runtime.GOMAXPROCS(0),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if c.Package == "" {
		return nil, NewConfigError("Package", nil, "missing package path in config")
	}
	if c.Target == "" {
		return nil, NewConfigError("Target", nil, "missing target directory in config")
	}
	return c, nil
}
