// Package pinecone provides a vector index adapter for Pinecone serverless
// indexes built on the official Go SDK.
package pinecone

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultReadyTimeout = 5 * time.Minute
)

// Config holds configuration for the Pinecone adapter.
type Config struct {
	// APIKey is the Pinecone API key (required).
	APIKey string

	// Host overrides the control plane URL.
	Host string

	// PollInterval and ReadyTimeout bound the wait for a new index to be ready.
	PollInterval time.Duration
	ReadyTimeout time.Duration
}

// controlPlane is the part of *pinecone.Client the adapter uses.
type controlPlane interface {
	ListIndexes(ctx context.Context) ([]*pinecone.Index, error)
	CreateServerlessIndex(ctx context.Context, in *pinecone.CreateServerlessIndexRequest) (*pinecone.Index, error)
	DescribeIndex(ctx context.Context, name string) (*pinecone.Index, error)
}

// dataPlane is the part of *pinecone.IndexConnection the adapter uses.
type dataPlane interface {
	UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error)
	Close() error
}

// Index provisions and writes Pinecone serverless indexes.
type Index struct {
	control      controlPlane
	connect      func(host string) (dataPlane, error)
	pollInterval time.Duration
	readyTimeout time.Duration

	mu    sync.Mutex
	hosts map[string]string
	conns map[string]dataPlane
}

// New creates a Pinecone adapter.
func New(cfg Config) (*Index, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigurationError{Key: "PINECONE_API_KEY", Reason: "must be set"}
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: cfg.APIKey,
		Host:   cfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone: create client: %w", err)
	}

	connect := func(host string) (dataPlane, error) {
		return client.Index(pinecone.NewIndexConnParams{Host: host})
	}
	return newIndex(client, connect, cfg), nil
}

func newIndex(control controlPlane, connect func(string) (dataPlane, error), cfg Config) *Index {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ReadyTimeout == 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}

	return &Index{
		control:      control,
		connect:      connect,
		pollInterval: cfg.PollInterval,
		readyTimeout: cfg.ReadyTimeout,
		hosts:        make(map[string]string),
		conns:        make(map[string]dataPlane),
	}
}

// ListIndexes returns the names of existing indexes.
func (x *Index) ListIndexes(ctx context.Context) ([]string, error) {
	indexes, err := x.control.ListIndexes(ctx)
	if err != nil {
		return nil, classify(err)
	}

	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		if idx == nil {
			continue
		}
		names = append(names, idx.Name)
		if idx.Host != "" {
			x.setHost(idx.Name, idx.Host)
		}
	}
	return names, nil
}

// CreateIndex creates a serverless index and waits until it is ready.
// An index that already exists is not an error.
func (x *Index) CreateIndex(ctx context.Context, spec domain.IndexSpec) error {
	dimension := int32(spec.Dimension)
	metric := pinecone.IndexMetric(spec.Metric.String())

	_, err := x.control.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:      spec.Name,
		Dimension: &dimension,
		Metric:    &metric,
		Cloud:     pinecone.Cloud(spec.Cloud),
		Region:    spec.Region,
	})
	if err != nil && !IsAlreadyExists(err) {
		return classify(err)
	}

	return x.waitReady(ctx, spec.Name)
}

// Upsert writes a batch of records to the index data plane.
func (x *Index) Upsert(ctx context.Context, index string, records []domain.VectorRecord) error {
	conn, err := x.conn(ctx, index)
	if err != nil {
		return err
	}

	vectors, err := Vectors(records)
	if err != nil {
		return err
	}

	n, err := conn.UpsertVectors(ctx, vectors)
	if err != nil {
		return classify(err)
	}
	if int(n) != len(records) {
		logger.Warn("pinecone: upserted %d of %d records into %s", n, len(records), index)
	}
	return nil
}

// Close releases every data plane connection.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	var errs []error
	for name, conn := range x.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("pinecone: close connection to %s: %w", name, err))
		}
		delete(x.conns, name)
	}
	return errors.Join(errs...)
}

// Vectors converts records into SDK vectors carrying text and source metadata.
func Vectors(records []domain.VectorRecord) ([]*pinecone.Vector, error) {
	vectors := make([]*pinecone.Vector, 0, len(records))
	for _, r := range records {
		metadata, err := structpb.NewStruct(map[string]any{
			"text":   r.Metadata.Text,
			"source": r.Metadata.Source,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: metadata of record %s: %v", domain.ErrInvalidInput, r.ID, err)
		}

		values := r.Values
		vectors = append(vectors, &pinecone.Vector{
			Id:       r.ID,
			Values:   &values,
			Metadata: metadata,
		})
	}
	return vectors, nil
}

// waitReady polls until the index reports ready and records its host.
func (x *Index) waitReady(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, x.readyTimeout)
	defer cancel()

	ticker := time.NewTicker(x.pollInterval)
	defer ticker.Stop()

	for {
		idx, err := x.control.DescribeIndex(ctx, name)
		if err != nil {
			return classify(err)
		}
		if idx.Status != nil && idx.Status.Ready && idx.Host != "" {
			x.setHost(name, idx.Host)
			return nil
		}
		if idx.Status != nil {
			logger.Debug("pinecone: index %s is %s, waiting", name, idx.Status.State)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("pinecone: index %s not ready: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}

// conn returns the data plane connection of an index, describing the index
// when its host is unknown.
func (x *Index) conn(ctx context.Context, name string) (dataPlane, error) {
	x.mu.Lock()
	conn, ok := x.conns[name]
	host := x.hosts[name]
	x.mu.Unlock()
	if ok {
		return conn, nil
	}

	if host == "" {
		idx, err := x.control.DescribeIndex(ctx, name)
		if err != nil {
			return nil, classify(err)
		}
		if idx.Host == "" {
			return nil, fmt.Errorf("pinecone: index %s has no host yet", name)
		}
		host = idx.Host
		x.setHost(name, host)
	}

	conn, err := x.connect(host)
	if err != nil {
		return nil, fmt.Errorf("pinecone: connect to %s: %w", name, err)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if existing, ok := x.conns[name]; ok {
		_ = conn.Close()
		return existing, nil
	}
	x.conns[name] = conn
	return conn, nil
}

func (x *Index) setHost(name, host string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.hosts[name] = host
}
