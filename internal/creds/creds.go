// Package creds implements the credential self-test: a minimal probe of
// the verifier endpoint and the vLLM serving endpoint, so a broken key
// or URL is caught before a multi-hour evaluation run.
package creds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/noah-ing/Agent0/internal/config"
	"github.com/noah-ing/Agent0/internal/types"
)

// Probe outcome statuses.
const (
	StatusOK   = "ok"
	StatusWarn = "warn"
	StatusFail = "fail"
	StatusSkip = "skip"
)

const (
	verifierTimeout = 15 * time.Second
	vllmTimeout     = 5 * time.Second
)

// ProbeResult is the outcome of one endpoint probe. Passed marks the
// endpoint as validated; a warn result can still pass (reachable
// endpoint, wrong model name).
type ProbeResult struct {
	Name    string
	Status  string
	Message string
	Passed  bool
}

// chatFunc issues a single chat completion. Swapped out in tests.
type chatFunc func(ctx context.Context, endpoint, model, apiKey string) (string, error)

// Checker runs the credential probes against configured endpoints.
type Checker struct {
	endpoints config.EndpointsConfig
	apiKey    string

	httpClient *http.Client
	chat       chatFunc
}

// Option customizes a Checker.
type Option func(*Checker)

// WithHTTPClient overrides the HTTP client used for the vLLM probe.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) { c.httpClient = client }
}

func withChat(fn chatFunc) Option {
	return func(c *Checker) { c.chat = fn }
}

// NewChecker creates a credential checker. The API key authenticates the
// verifier probe and, when set, the vLLM probe.
func NewChecker(endpoints config.EndpointsConfig, apiKey string, opts ...Option) *Checker {
	c := &Checker{
		endpoints:  endpoints,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: vllmTimeout},
		chat:       langchainChat,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckAll runs every probe and returns their results. It errors only
// when no probe validated an endpoint.
func (c *Checker) CheckAll(ctx context.Context) ([]ProbeResult, error) {
	results := []ProbeResult{
		c.CheckVerifier(ctx),
		c.CheckVLLM(ctx),
	}

	for _, result := range results {
		if result.Passed {
			return results, nil
		}
	}
	return results, types.NewError(types.CREDS_NONE_VALIDATED, "no credentials validated")
}

// CheckVerifier sends a minimal chat completion through the verifier
// endpoint. A model-not-found response still counts as reachable, since
// only the configured model name is wrong.
func (c *Checker) CheckVerifier(ctx context.Context) ProbeResult {
	endpoint := c.endpoints.VerifierEndpoint
	if endpoint == "" || c.apiKey == "" {
		return ProbeResult{
			Name:    "verifier",
			Status:  StatusSkip,
			Message: "verifier endpoint or API key not configured; skipping",
		}
	}

	model := c.endpoints.VerifierModel
	if model == "" {
		model = "gpt-4o-mini-verifier"
	}

	ctx, cancel := context.WithTimeout(ctx, verifierTimeout)
	defer cancel()

	sample, err := c.chat(ctx, endpoint, model, c.apiKey)
	if err != nil {
		if isModelNotFound(err) {
			return ProbeResult{
				Name:    "verifier",
				Status:  StatusWarn,
				Message: fmt.Sprintf("verifier reachable but model %q not available; update the verifier model", model),
				Passed:  true,
			}
		}
		return ProbeResult{
			Name:    "verifier",
			Status:  StatusFail,
			Message: fmt.Sprintf("verifier request failed: %v", err),
		}
	}

	sample = strings.ReplaceAll(sample, "\n", " ")
	if len(sample) > 80 {
		sample = sample[:80]
	}
	return ProbeResult{
		Name:    "verifier",
		Status:  StatusOK,
		Message: fmt.Sprintf("verifier reachable via %s (sample output: %q)", endpoint, sample),
		Passed:  true,
	}
}

// CheckVLLM lists the models served by the vLLM endpoint.
func (c *Checker) CheckVLLM(ctx context.Context) ProbeResult {
	base := c.endpoints.VLLMBase
	if base == "" {
		return ProbeResult{
			Name:    "vllm",
			Status:  StatusSkip,
			Message: "vLLM base URL not configured; skipping connectivity check",
		}
	}

	url := strings.TrimRight(base, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ProbeResult{
			Name:    "vllm",
			Status:  StatusFail,
			Message: fmt.Sprintf("failed to build request: %v", err),
		}
	}
	key := c.endpoints.EvalAPIKey
	if key == "" {
		key = c.apiKey
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ProbeResult{
			Name:    "vllm",
			Status:  StatusFail,
			Message: fmt.Sprintf("vLLM request failed: %v", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ProbeResult{
			Name:    "vllm",
			Status:  StatusFail,
			Message: fmt.Sprintf("failed to read vLLM response: %v", err),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return ProbeResult{
			Name:    "vllm",
			Status:  StatusFail,
			Message: fmt.Sprintf("vLLM HTTP error: %d %s", resp.StatusCode, truncate(string(body), 120)),
		}
	}

	var payload struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ProbeResult{
			Name:    "vllm",
			Status:  StatusFail,
			Message: fmt.Sprintf("unexpected vLLM response: %v", err),
		}
	}

	display := "(no models returned)"
	if len(payload.Data) > 0 {
		display = payload.Data[0].ID
	}
	return ProbeResult{
		Name:    "vllm",
		Status:  StatusOK,
		Message: fmt.Sprintf("vLLM endpoint %s responded (example model: %s)", base, display),
		Passed:  true,
	}
}

// langchainChat is the production chat probe, backed by the langchaingo
// OpenAI-compatible client.
func langchainChat(ctx context.Context, endpoint, model, apiKey string) (string, error) {
	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithBaseURL(strings.TrimRight(endpoint, "/")),
	)
	if err != nil {
		return "", err
	}

	resp, err := llms.GenerateFromSinglePrompt(ctx, client,
		"Does 2+2 equal 4? Reply yes/no.",
		llms.WithMaxTokens(8),
	)
	if err != nil {
		return "", err
	}
	return resp, nil
}

// isModelNotFound detects the OpenAI-style "model does not exist"
// rejection, which proves the endpoint and key work.
func isModelNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "model_not_found") ||
		strings.Contains(msg, "no such model")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
