package mongo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const (
	defaultConnectTimeout = 10 * time.Second
	// distinctPrealloc caps the result preallocation; the limit comes from the caller.
	distinctPrealloc = 64
)

// Config holds connection parameters for a MongoDB store.
type Config struct {
	URI        string
	Database   string
	Collection string
	AppName    string
	// ConnectTimeout bounds the initial server selection; 0 means the default.
	ConnectTimeout time.Duration
	// QueryTimeout bounds every find/aggregate call; 0 means the caller's context only.
	QueryTimeout time.Duration
}

// Store implements db.Store on a single MongoDB collection.
// The underlying client is pooled and safe for concurrent use.
type Store struct {
	client       *mongodriver.Client
	database     *mongodriver.Database
	coll         *mongodriver.Collection
	queryTimeout time.Duration
}

// NewStore connects a client to the configured deployment. It does not wait for the
// server; call WaitForReady or Ping before serving.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection is required")
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	client, err := mongodriver.Connect(ctx, opts)
	if err != nil {
		return nil, &db.Error{Op: db.OpConnect, Err: err}
	}

	database := client.Database(cfg.Database)
	return &Store{
		client:       client,
		database:     database,
		coll:         database.Collection(cfg.Collection),
		queryTimeout: cfg.QueryTimeout,
	}, nil
}

// Ping runs the ping command against the configured database.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.database.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close disconnects the client and releases pooled connections.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return &db.Error{Op: db.OpDisconnect, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("timeout waiting for database: %w", lastErr)
			}
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if lastErr = s.Ping(ctx); lastErr == nil {
				return nil
			}
		}
	}
}

// Find decodes every document matching q into results (a pointer to a slice).
func (s *Store) Find(ctx context.Context, q *db.FindQuery, results any) error {
	filter, err := buildFilter(q.Filter)
	if err != nil {
		return &db.Error{Op: db.OpFind, Err: err}
	}

	opts := options.Find().SetProjection(buildProjection(q.Fields))
	if len(q.Sort) > 0 {
		opts.SetSort(buildSort(q.Sort))
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return &db.Error{Op: db.OpFind, Err: err}
	}
	defer func() { _ = cur.Close(ctx) }()

	var raws []bson.Raw
	if err := cur.All(ctx, &raws); err != nil {
		return &db.Error{Op: db.OpFind, Err: classify(err)}
	}
	if err := decodeRows(raws, q.Fields, results); err != nil {
		return &db.Error{Op: db.OpFind, Err: err}
	}
	return nil
}

// decodeRows checks that every row carries each projected field with a non-null
// value, then decodes the rows into results (a pointer to a slice).
// The first bad row aborts the whole read.
func decodeRows(raws []bson.Raw, fields []string, results any) error {
	rv := reflect.ValueOf(results)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("results must be a pointer to a slice, got %T", results)
	}

	slice := reflect.MakeSlice(rv.Elem().Type(), len(raws), len(raws))
	for i, raw := range raws {
		for _, f := range fields {
			val, err := raw.LookupErr(f)
			if err != nil {
				return fmt.Errorf("%w: row %d: missing field %q", db.ErrDecode, i, f)
			}
			if val.Type == bson.TypeNull || val.Type == bson.TypeUndefined {
				return fmt.Errorf("%w: row %d: field %q is null", db.ErrDecode, i, f)
			}
		}
		if err := bson.Unmarshal(raw, slice.Index(i).Addr().Interface()); err != nil {
			return fmt.Errorf("%w: row %d: %w", db.ErrDecode, i, err)
		}
	}
	rv.Elem().Set(slice)
	return nil
}

// groupRow is one $group output row keyed by the distinct value.
type groupRow struct {
	Value string `bson:"_id"`
}

// Distinct unwinds q.Field, keeps the elements matching q.Match, groups them and
// returns at most q.Limit distinct values in server order.
func (s *Store) Distinct(ctx context.Context, q *db.DistinctQuery) ([]string, error) {
	pipeline, err := buildDistinctPipeline(q)
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}
	defer func() { _ = cur.Close(ctx) }()

	values := make([]string, 0, min(q.Limit, distinctPrealloc))
	for cur.Next(ctx) {
		var row groupRow
		if err := cur.Decode(&row); err != nil {
			return nil, &db.Error{Op: db.OpAggregate, Err: classify(err)}
		}
		values = append(values, row.Value)
	}
	if err := cur.Err(); err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}
	return values, nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// classify marks bson decoding failures with db.ErrDecode.
func classify(err error) error {
	var decodeErr *bsoncodec.DecodeError
	if errors.As(err, &decodeErr) {
		return fmt.Errorf("%w: %w", db.ErrDecode, err)
	}
	return err
}
