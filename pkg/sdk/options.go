package docsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	mongoURI        string
	mongoDatabase   string
	mongoCollection string

	backendAddress string
	moduleName     string
	selfAddress    string
	schema         Schema
	backendTimeout time.Duration

	queryTimeout     time.Duration
	readinessTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMongo supplies the document store coordinates directly.
func WithMongo(uri, database, collection string) Option {
	return optionFunc(func(c *clientConfig) {
		c.mongoURI = uri
		c.mongoDatabase = database
		c.mongoCollection = collection
	})
}

// WithBackend obtains the document store coordinates by registering with a backend.
// The registration is released on Close.
func WithBackend(address, moduleName string, schema Schema) Option {
	return optionFunc(func(c *clientConfig) {
		c.backendAddress = address
		c.moduleName = moduleName
		c.schema = schema
	})
}

// WithSelfAddress announces the address the backend can reach this process at.
func WithSelfAddress(addr string) Option {
	return optionFunc(func(c *clientConfig) {
		c.selfAddress = addr
	})
}

// WithBackendTimeout bounds registration requests. Default: no timeout.
func WithBackendTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.backendTimeout = d
	})
}

// WithQueryTimeout bounds every search call. Default: the caller's context only.
func WithQueryTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryTimeout = d
	})
}

// WithReadinessTimeout bounds the initial wait for the document store. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
