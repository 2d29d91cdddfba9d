package metadata

import (
	"go.uber.org/zap"

	"github.com/syssam/schemagraph/dialect"
	"github.com/syssam/schemagraph/naming"
)

// Option configures a Builder.
type Option func(*Builder) error

// WithDialect sets the dialect capabilities the graph is resolved for.
// The default dialect is PostgreSQL.
func WithDialect(d dialect.Capabilities) Option {
	return func(b *Builder) error {
		if d == nil {
			return NewConfigError("Dialect", nil, "dialect cannot be nil")
		}
		b.dialect = d
		return nil
	}
}

// WithDialectName sets the dialect by name.
func WithDialectName(name string) Option {
	return func(b *Builder) error {
		d, err := dialect.Lookup(name)
		if err != nil {
			return NewConfigError("Dialect", name, err.Error())
		}
		b.dialect = d
		return nil
	}
}

// WithNaming sets the naming strategy. The default is naming.Default.
func WithNaming(n naming.Strategy) Option {
	return func(b *Builder) error {
		if n == nil {
			return NewConfigError("Naming", nil, "naming strategy cannot be nil")
		}
		b.naming = n
		return nil
	}
}

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		b.log = l
		return nil
	}
}

// WithRelationLoader sets the loader lazy relation accessors are handed to.
func WithRelationLoader(l RelationLoader) Option {
	return func(b *Builder) error {
		if l == nil {
			return NewConfigError("RelationLoader", nil, "relation loader cannot be nil")
		}
		b.loader = l
		return nil
	}
}
