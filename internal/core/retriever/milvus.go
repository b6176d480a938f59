package retriever

import (
	"context"
	"fmt"
	"strconv"

	"katutubo-llm/config"
	"katutubo-llm/pkg/logger"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
)

type MilvusConfig struct {
	Address     string
	Collection  string
	VectorField string
	AnswerField string
	MetricType  string
	SearchEf    int
}

// milvusSearcher is the part of the Milvus client the index needs.
type milvusSearcher interface {
	HasCollection(ctx context.Context, collName string) (bool, error)
	Search(ctx context.Context, collName string, partitions []string, expr string, outputFields []string,
		vectors []milvusentity.Vector, vectorField string, metricType milvusentity.MetricType, topK int,
		sp milvusentity.SearchParam, opts ...milvusclient.SearchQueryOptionFunc) ([]milvusclient.SearchResult, error)
	Close() error
}

// Milvus searches an FAQ collection holding one vector and one answer per row.
type Milvus struct {
	cli    milvusSearcher
	cfg    MilvusConfig
	metric milvusentity.MetricType
	param  milvusentity.SearchParam
}

// DialMilvus connects once, makes sure the collection exists and is loaded,
// and keeps the connection for the process lifetime.
func DialMilvus(ctx context.Context, cfg MilvusConfig) (*Milvus, error) {
	cli, err := milvusclient.NewClient(ctx, milvusclient.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("milvus connect %s: %w", cfg.Address, err)
	}
	exists, err := cli.HasCollection(ctx, cfg.Collection)
	if err != nil {
		cli.Close()
		return nil, err
	}
	if !exists {
		cli.Close()
		return nil, fmt.Errorf("collection %q not found", cfg.Collection)
	}
	if err := cli.LoadCollection(ctx, cfg.Collection, false); err != nil {
		cli.Close()
		return nil, err
	}
	logger.Info("%v: collection %s loaded from %s", config.ModuleMilvus, cfg.Collection, cfg.Address)
	return newMilvus(cli, cfg)
}

func newMilvus(cli milvusSearcher, cfg MilvusConfig) (*Milvus, error) {
	if cfg.SearchEf <= 0 {
		cfg.SearchEf = 64
	}
	param, err := milvusentity.NewIndexHNSWSearchParam(cfg.SearchEf)
	if err != nil {
		return nil, err
	}
	return &Milvus{
		cli:    cli,
		cfg:    cfg,
		metric: milvusentity.MetricType(cfg.MetricType),
		param:  param,
	}, nil
}

func (m *Milvus) Nearest(ctx context.Context, vector []float32) (Hit, bool, error) {
	if len(vector) == 0 {
		return Hit{}, false, fmt.Errorf("empty query vector")
	}
	results, err := m.cli.Search(
		ctx,
		m.cfg.Collection,
		nil, // partitions
		"",  // no filter
		[]string{m.cfg.AnswerField},
		[]milvusentity.Vector{milvusentity.FloatVector(vector)},
		m.cfg.VectorField,
		m.metric,
		1,
		m.param,
	)
	if err != nil {
		logger.Error(err, "%v: search failed", config.ModuleMilvus)
		return Hit{}, false, err
	}
	if len(results) == 0 || results[0].ResultCount == 0 {
		return Hit{}, false, nil
	}
	it := results[0]

	hit := Hit{Score: float64(it.Scores[0])}
	switch ids := it.IDs.(type) {
	case *milvusentity.ColumnInt64:
		hit.ID = strconv.FormatInt(ids.Data()[0], 10)
	case *milvusentity.ColumnVarChar:
		hit.ID = ids.Data()[0]
	}
	for _, field := range it.Fields {
		if col, ok := field.(*milvusentity.ColumnVarChar); ok && col.Name() == m.cfg.AnswerField {
			hit.Answer = col.Data()[0]
		}
	}
	return hit, true, nil
}

func (m *Milvus) Ping(ctx context.Context) error {
	exists, err := m.cli.HasCollection(ctx, m.cfg.Collection)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("collection %q not found", m.cfg.Collection)
	}
	return nil
}

func (m *Milvus) Close() error {
	return m.cli.Close()
}
