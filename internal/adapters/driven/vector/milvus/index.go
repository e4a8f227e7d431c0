// Package milvus provides a vector index adapter for Milvus collections.
// Each index maps to a collection with a VarChar primary key, a float vector
// field and the text and source metadata fields.
package milvus

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Field names of an ingestion collection.
const (
	FieldID     = "id"
	FieldVector = "vector"
	FieldText   = "text"
	FieldSource = "source"
)

// Field limits.
const (
	MaxIDLength     = 64
	MaxTextLength   = 65535
	MaxSourceLength = 1024
)

// Config holds connection settings.
type Config struct {
	// Address is the Milvus endpoint, e.g. localhost:19530.
	Address string

	// APIKey is an optional token (Zilliz Cloud or user:password).
	APIKey string
}

// Index writes records into Milvus collections.
type Index struct {
	client *milvusclient.Client
}

// New connects to Milvus.
func New(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.Address == "" {
		return nil, &domain.ConfigurationError{Key: "MILVUS_ADDRESS", Reason: "must be set"}
	}

	logger.Debug("milvus: connecting to %s", cfg.Address)
	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address: cfg.Address,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("milvus: connect to %s: %w", cfg.Address, err)
	}

	return &Index{client: client}, nil
}

// ListIndexes returns collection names.
func (x *Index) ListIndexes(ctx context.Context) ([]string, error) {
	names, err := x.client.ListCollections(ctx, milvusclient.NewListCollectionOption())
	if err != nil {
		return nil, fmt.Errorf("milvus: list collections: %w", err)
	}
	return names, nil
}

// CreateIndex creates a collection with a vector index and loads it.
func (x *Index) CreateIndex(ctx context.Context, spec domain.IndexSpec) error {
	metric, err := MetricType(spec.Metric)
	if err != nil {
		return err
	}

	createOpt := milvusclient.NewCreateCollectionOption(spec.Name, Schema(spec))
	if err := x.client.CreateCollection(ctx, createOpt); err != nil {
		return fmt.Errorf("milvus: create collection %s: %w", spec.Name, err)
	}

	indexOpt := milvusclient.NewCreateIndexOption(spec.Name, FieldVector, index.NewAutoIndex(metric))
	indexTask, err := x.client.CreateIndex(ctx, indexOpt)
	if err != nil {
		return fmt.Errorf("milvus: create index on %s: %w", spec.Name, err)
	}
	if err := indexTask.Await(ctx); err != nil {
		return fmt.Errorf("milvus: await index on %s: %w", spec.Name, err)
	}

	loadTask, err := x.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(spec.Name))
	if err != nil {
		return fmt.Errorf("milvus: load collection %s: %w", spec.Name, err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("milvus: await load of %s: %w", spec.Name, err)
	}

	logger.Info("milvus: created collection %s (dim=%d, metric=%s)", spec.Name, spec.Dimension, spec.Metric)
	return nil
}

// Upsert writes records column by column.
func (x *Index) Upsert(ctx context.Context, collection string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	cols, err := Columns(records)
	if err != nil {
		return err
	}

	opt := milvusclient.NewColumnBasedInsertOption(collection).
		WithVarcharColumn(FieldID, cols.IDs).
		WithFloatVectorColumn(FieldVector, cols.Dimension, cols.Vectors).
		WithVarcharColumn(FieldText, cols.Texts).
		WithVarcharColumn(FieldSource, cols.Sources)

	result, err := x.client.Upsert(ctx, opt)
	if err != nil {
		return fmt.Errorf("milvus: upsert into %s: %w", collection, err)
	}
	logger.Debug("milvus: upserted %d records into %s", result.UpsertCount, collection)
	return nil
}

// Close disconnects from Milvus.
func (x *Index) Close() error {
	return x.client.Close(context.Background())
}

// Schema builds the collection schema for an index spec.
func Schema(spec domain.IndexSpec) *entity.Schema {
	return &entity.Schema{
		CollectionName: spec.Name,
		Description:    "ingested document chunks",
		Fields: []*entity.Field{
			{
				Name:       FieldID,
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{"max_length": strconv.Itoa(MaxIDLength)},
			},
			{
				Name:       FieldVector,
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": strconv.Itoa(spec.Dimension)},
			},
			{
				Name:       FieldText,
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": strconv.Itoa(MaxTextLength)},
			},
			{
				Name:       FieldSource,
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": strconv.Itoa(MaxSourceLength)},
			},
		},
	}
}

// MetricType maps a domain metric to a Milvus metric.
func MetricType(m domain.Metric) (entity.MetricType, error) {
	switch m {
	case domain.MetricCosine:
		return entity.COSINE, nil
	case domain.MetricEuclidean:
		return entity.L2, nil
	case domain.MetricDotProduct:
		return entity.IP, nil
	default:
		return "", fmt.Errorf("%w: unsupported metric %q", domain.ErrInvalidInput, m)
	}
}

// ColumnData is a batch of records split into columns.
type ColumnData struct {
	Dimension int
	IDs       []string
	Vectors   [][]float32
	Texts     []string
	Sources   []string
}

// Columns converts records into columns. All vectors must share a dimension.
// Text longer than the field limit is rejected: stored text must be the text
// that was embedded.
func Columns(records []domain.VectorRecord) (*ColumnData, error) {
	cols := &ColumnData{
		IDs:     make([]string, 0, len(records)),
		Vectors: make([][]float32, 0, len(records)),
		Texts:   make([]string, 0, len(records)),
		Sources: make([]string, 0, len(records)),
	}

	for i, r := range records {
		if i == 0 {
			cols.Dimension = len(r.Values)
		} else if len(r.Values) != cols.Dimension {
			return nil, fmt.Errorf("%w: record %s has %d values, batch has %d",
				domain.ErrDimensionMismatch, r.ID, len(r.Values), cols.Dimension)
		}

		text := r.Metadata.Text
		if len(text) > MaxTextLength {
			return nil, fmt.Errorf("%w: text of record %s is %d bytes, limit is %d",
				domain.ErrInvalidInput, r.ID, len(text), MaxTextLength)
		}

		cols.IDs = append(cols.IDs, r.ID)
		cols.Vectors = append(cols.Vectors, r.Values)
		cols.Texts = append(cols.Texts, text)
		cols.Sources = append(cols.Sources, clipBytes(r.Metadata.Source, MaxSourceLength))
	}

	return cols, nil
}

// clipBytes returns the longest prefix of s no longer than n bytes that
// does not split a character.
func clipBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
