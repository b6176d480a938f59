package chat

import (
	"context"
	"errors"
	"testing"

	"katutubo-llm/internal/core/inference"
	"katutubo-llm/internal/core/prompt"
	"katutubo-llm/internal/core/tokenizer"
	"katutubo-llm/pkg/apperror"
	"katutubo-llm/pkg/apperror/status"
	"katutubo-llm/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	answer string
	ok     bool
	err    error
}

func (f fakeRetriever) Search(context.Context, string) (string, bool, error) {
	return f.answer, f.ok, f.err
}

type recordingGenerator struct {
	prompts []string
	reply   string
}

func (r *recordingGenerator) Complete(_ context.Context, p string, _ inference.Params) (string, error) {
	r.prompts = append(r.prompts, p)
	return p + r.reply, nil
}

type recordingLog struct {
	got []Exchange
	err error
}

func (r *recordingLog) Record(_ context.Context, ex Exchange) error {
	r.got = append(r.got, ex)
	return r.err
}

func newEngine(gen inference.TextGenerator) *inference.Engine {
	return inference.NewEngine(prompt.NewBuilder(tokenizer.NewApprox(4), "sys", 512), gen)
}

func TestService_Run_UsesFAQAndIgnoresHistory(t *testing.T) {
	gen := &recordingGenerator{reply: " Lagnat, rashes, at sakit ng ulo."}
	log := &recordingLog{}
	svc := NewService(fakeRetriever{answer: "Dengue symptoms include high fever.", ok: true}, newEngine(gen), log)

	resp, err := svc.Run(context.Background(), llm.InferRequest{
		Prompt:  "Anong symptoms ng dengue?",
		History: llm.History{{User: "hi", Assistant: "hello po"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lagnat, rashes, at sakit ng ulo.", resp.Response)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Here's the relevant information:\nDengue symptoms include high fever.\n")
	assert.NotContains(t, gen.prompts[0], "hello po")

	require.Len(t, log.got, 1)
	assert.True(t, log.got[0].UsedFAQ)
	assert.Equal(t, 1, log.got[0].HistoryTurns)
	assert.Equal(t, "Anong symptoms ng dengue?", log.got[0].Prompt)
}

func TestService_Run_NoFAQKeepsHistory(t *testing.T) {
	gen := &recordingGenerator{reply: "Oo, pwedeng delikado."}
	svc := NewService(fakeRetriever{}, newEngine(gen), nil)

	resp, err := svc.Run(context.Background(), llm.InferRequest{
		Prompt:  "Delikado ba ito?",
		History: llm.History{{User: "Anong symptoms ng dengue?", Assistant: "Lagnat."}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Oo, pwedeng delikado.", resp.Response)
	assert.Contains(t, gen.prompts[0], "\nquestion: Anong symptoms ng dengue?\nanswer: Lagnat.")
	assert.NotContains(t, gen.prompts[0], "relevant information")
}

func TestService_Run_RetrievalError(t *testing.T) {
	gen := &recordingGenerator{}
	retrievalErr := status.New(status.RetrievalSearchFailed, errors.New("similarity search failed: timeout"))
	svc := NewService(fakeRetriever{err: retrievalErr}, newEngine(gen), nil)

	_, err := svc.Run(context.Background(), llm.InferRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.True(t, apperror.IsRetrieval(err))
	assert.Empty(t, gen.prompts, "model must not run when retrieval fails")
}

func TestService_Run_ExchangeLogFailureIsNotFatal(t *testing.T) {
	gen := &recordingGenerator{reply: "ok"}
	svc := NewService(fakeRetriever{}, newEngine(gen), &recordingLog{err: errors.New("disk full")})

	resp, err := svc.Run(context.Background(), llm.InferRequest{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Response)
}
