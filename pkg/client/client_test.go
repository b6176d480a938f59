package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"katutubo-llm/pkg/apperror"
	"katutubo-llm/pkg/client"
	"katutubo-llm/pkg/llm"
)

var _ = Describe("Client", func() {
	var (
		ctx         context.Context
		ready       atomic.Bool
		healthCalls atomic.Int32
		apiCalls    atomic.Int32
		lastInfer   llm.InferRequest
		inferStatus int
		server      *httptest.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		ready.Store(true)
		healthCalls.Store(0)
		apiCalls.Store(0)
		inferStatus = http.StatusOK

		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			healthCalls.Add(1)
			json.NewEncoder(w).Encode(llm.HealthResponse{Ready: ready.Load()})
		})
		mux.HandleFunc("/infer", func(w http.ResponseWriter, r *http.Request) {
			apiCalls.Add(1)
			_ = json.NewDecoder(r.Body).Decode(&lastInfer)
			if inferStatus != http.StatusOK {
				w.WriteHeader(inferStatus)
				json.NewEncoder(w).Encode(llm.ErrorResponse{Detail: "similarity search failed: timeout"})
				return
			}
			json.NewEncoder(w).Encode(llm.InferResponse{Response: "Lagnat at rashes."})
		})
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			apiCalls.Add(1)
			json.NewEncoder(w).Encode(llm.RootResponse{Message: "Welcome to the Katutubo LLM Inference API!"})
		})
		server = httptest.NewServer(mux)
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func(retries int) *client.Client {
		return client.New(server.URL, client.Options{
			MaxRetries:    retries,
			RetryDelay:    time.Millisecond,
			HealthTimeout: time.Second,
		})
	}

	It("returns the banner from the root endpoint", func() {
		resp, err := newClient(3).Root(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Message).To(Equal("Welcome to the Katutubo LLM Inference API!"))
		Expect(healthCalls.Load()).To(Equal(int32(1)))
	})

	It("sends the prompt with its history", func() {
		history := llm.History{{User: "hi", Assistant: "hello"}}
		resp, err := newClient(3).Infer(ctx, "Anong symptoms ng dengue?", history)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Response).To(Equal("Lagnat at rashes."))
		Expect(lastInfer.Prompt).To(Equal("Anong symptoms ng dengue?"))
		Expect(lastInfer.History).To(Equal(history))
	})

	It("sends an empty history rather than null", func() {
		_, err := newClient(3).Infer(ctx, "hello", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(lastInfer.History).NotTo(BeNil())
		Expect(lastInfer.History).To(BeEmpty())
	})

	It("never issues the call when the service stays unready", func() {
		ready.Store(false)
		_, err := newClient(3).Infer(ctx, "hello", nil)
		Expect(err).To(HaveOccurred())
		Expect(apperror.IsServiceUnavailable(err)).To(BeTrue())
		Expect(errors.Is(err, client.ErrUnavailable)).To(BeTrue())
		Expect(healthCalls.Load()).To(Equal(int32(3)))
		Expect(apiCalls.Load()).To(BeZero())
	})

	It("treats an unreachable service as unavailable", func() {
		c := client.New("http://127.0.0.1:1", client.Options{MaxRetries: 2, HealthTimeout: 100 * time.Millisecond})
		_, err := c.Root(ctx)
		Expect(apperror.IsServiceUnavailable(err)).To(BeTrue())
	})

	It("surfaces error responses as APIError", func() {
		inferStatus = http.StatusBadRequest
		_, err := newClient(3).Infer(ctx, "hello", nil)
		var apiErr *client.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(apiErr.Detail).To(Equal("similarity search failed: timeout"))
	})

	It("stops waiting when the context is cancelled", func() {
		ready.Store(false)
		c := client.New(server.URL, client.Options{MaxRetries: 20, RetryDelay: time.Hour})
		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err := c.Root(cctx)
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		Expect(apiCalls.Load()).To(BeZero())
	})
})
