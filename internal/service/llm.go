package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"aula-rag/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const gigachatOAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"

// LLMService wraps the GigaChat API: chat completions through the gigago
// client and embeddings through the REST endpoint the client does not cover.
// The OAuth token for the REST calls expires server-side, so a 401 triggers a
// refresh and one retry.
type LLMService struct {
	client     *gigago.Client
	model      *gigago.GenerativeModel
	config     *config.GigaChatConfig
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	oauthURL   string
	dimension  int

	mu          sync.Mutex
	accessToken string
}

func NewLLMService(cfg *config.GigaChatConfig, dimension int, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.Temperature = 0.3

	httpClient := &http.Client{}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	accessToken, err := getAccessToken(ctx, cfg, httpClient, gigachatOAuthURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return &LLMService{
		client:      client,
		model:       model,
		config:      cfg,
		logger:      logger,
		httpClient:  httpClient,
		accessToken: accessToken,
		baseURL:     "https://gigachat.devices.sberbank.ru/api/v1",
		oauthURL:    gigachatOAuthURL,
		dimension:   dimension,
	}, nil
}

// Complete sends a system+user exchange and returns the model's text verbatim.
func (s *LLMService) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleSystem, Content: system},
		{Role: gigago.RoleUser, Content: user},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return resp.Choices[0].Message.Content, nil
}

// EmbedBatch converts texts into fixed-dimension vectors via the GigaChat
// embeddings endpoint. Blank inputs are substituted so the provider does not
// reject the batch.
func (s *LLMService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	input := make([]string, len(texts))
	for i, t := range texts {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			input[i] = trimmed
		} else {
			input[i] = "<empty>"
		}
	}

	body, err := json.Marshal(map[string]any{
		"model": s.config.EmbeddingModel,
		"input": input,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embeddings request: %w", err)
	}

	resp, err := s.postEmbeddings(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token expired, refresh and retry once
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		s.logger.Info("Access token rejected, refreshing")
		if err := s.refreshAccessToken(ctx); err != nil {
			return nil, fmt.Errorf("embeddings failed with 401, token refresh also failed: %w", err)
		}

		resp, err = s.postEmbeddings(ctx, body)
		if err != nil {
			return nil, fmt.Errorf("embeddings request failed after token refresh: %w", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var embResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings response: %w", err)
	}
	if len(embResp.Data) != len(input) {
		return nil, fmt.Errorf("embeddings count mismatch: sent %d, got %d", len(input), len(embResp.Data))
	}

	vectors := make([][]float32, len(embResp.Data))
	for _, item := range embResp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings response index %d out of range", item.Index)
		}
		if len(item.Embedding) != s.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dimension, len(item.Embedding))
		}
		vectors[item.Index] = item.Embedding
	}

	return vectors, nil
}

func (s *LLMService) postEmbeddings(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token())

	return s.httpClient.Do(req)
}

func (s *LLMService) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

func (s *LLMService) refreshAccessToken(ctx context.Context) error {
	token, err := getAccessToken(ctx, s.config, s.httpClient, s.oauthURL, s.logger)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
	return nil
}

// Dimension returns the configured embedding dimensionality.
func (s *LLMService) Dimension() int {
	return s.dimension
}

func (s *LLMService) Close() error {
	s.client.Close()
	return nil
}

// getAccessToken obtains an access token from the GigaChat OAuth endpoint.
// The API key is expected to be Base64-encoded already.
func getAccessToken(ctx context.Context, cfg *config.GigaChatConfig, httpClient *http.Client, oauthURL string, logger *zap.Logger) (string, error) {
	formData := url.Values{}
	formData.Set("scope", cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, "POST", oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.New().String())
	req.Header.Set("Authorization", "Basic "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	logger.Info("Access token obtained", zap.Int("expires_in", oauthResp.ExpiresIn))
	return oauthResp.AccessToken, nil
}
