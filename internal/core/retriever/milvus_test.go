package retriever

import (
	"context"
	"errors"
	"testing"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchCall struct {
	collection   string
	outputFields []string
	vectorField  string
	metric       milvusentity.MetricType
	topK         int
}

type fakeMilvus struct {
	results []milvusclient.SearchResult
	err     error
	exists  bool
	calls   []searchCall
	closed  bool
}

func (f *fakeMilvus) HasCollection(context.Context, string) (bool, error) {
	return f.exists, f.err
}

func (f *fakeMilvus) Search(_ context.Context, collName string, _ []string, _ string, outputFields []string,
	_ []milvusentity.Vector, vectorField string, metricType milvusentity.MetricType, topK int,
	_ milvusentity.SearchParam, _ ...milvusclient.SearchQueryOptionFunc) ([]milvusclient.SearchResult, error) {
	f.calls = append(f.calls, searchCall{collName, outputFields, vectorField, metricType, topK})
	return f.results, f.err
}

func (f *fakeMilvus) Close() error {
	f.closed = true
	return nil
}

func testMilvusConfig() MilvusConfig {
	return MilvusConfig{
		Collection:  "up_faqs",
		VectorField: "embedding",
		AnswerField: "answer",
		MetricType:  "COSINE",
		SearchEf:    64,
	}
}

func TestMilvus_Nearest(t *testing.T) {
	fake := &fakeMilvus{results: []milvusclient.SearchResult{{
		ResultCount: 1,
		IDs:         milvusentity.NewColumnInt64("id", []int64{42}),
		Scores:      []float32{0.75},
		Fields: []milvusentity.Column{
			milvusentity.NewColumnVarChar("answer", []string{"Pumunta sa registrar."}),
		},
	}}}
	m, err := newMilvus(fake, testMilvusConfig())
	require.NoError(t, err)

	hit, ok, err := m.Nearest(context.Background(), []float32{0.1, 0.2, 0.3})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "42", hit.ID)
	assert.InDelta(t, 0.75, hit.Score, 1e-6)
	assert.Equal(t, "Pumunta sa registrar.", hit.Answer)

	require.Len(t, fake.calls, 1)
	call := fake.calls[0]
	assert.Equal(t, "up_faqs", call.collection)
	assert.Equal(t, []string{"answer"}, call.outputFields)
	assert.Equal(t, "embedding", call.vectorField)
	assert.Equal(t, milvusentity.COSINE, call.metric)
	assert.Equal(t, 1, call.topK)
}

func TestMilvus_Nearest_Empty(t *testing.T) {
	m, err := newMilvus(&fakeMilvus{}, testMilvusConfig())
	require.NoError(t, err)

	_, ok, err := m.Nearest(context.Background(), []float32{1})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMilvus_Nearest_Errors(t *testing.T) {
	m, err := newMilvus(&fakeMilvus{err: errors.New("rpc error")}, testMilvusConfig())
	require.NoError(t, err)

	_, _, err = m.Nearest(context.Background(), []float32{1})
	assert.ErrorContains(t, err, "rpc error")

	_, _, err = m.Nearest(context.Background(), nil)
	assert.Error(t, err)
}

func TestMilvus_PingAndClose(t *testing.T) {
	fake := &fakeMilvus{exists: true}
	m, err := newMilvus(fake, testMilvusConfig())
	require.NoError(t, err)
	assert.NoError(t, m.Ping(context.Background()))

	fake.exists = false
	assert.ErrorContains(t, m.Ping(context.Background()), "up_faqs")

	require.NoError(t, m.Close())
	assert.True(t, fake.closed)
}
