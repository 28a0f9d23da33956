package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"contaflow/pkg/config"

	"go.uber.org/zap"
)

// DefaultBaseURL is used when no endpoint is configured or the configured one
// cannot be parsed.
const DefaultBaseURL = "https://api.openai.com/v1"

const openAIHost = "api.openai.com"

// APIError is an error the remote API reported itself: status code plus the
// message extracted from the error body (or the raw body when it is not the
// expected JSON shape).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Balance unavailability reason codes.
const (
	BalanceReasonSessionKeyRequired = "session_key_required"
	BalanceReasonForbidden          = "forbidden"
	BalanceReasonUnsupported        = "unsupported"
)

// BalanceUnavailableError signals that the billing endpoint cannot serve this
// deployment, with a machine-readable reason. It is not a transport failure.
type BalanceUnavailableError struct {
	Reason string
}

func (e *BalanceUnavailableError) Error() string {
	return "balance unavailable: " + e.Reason
}

// CreditBalance is the remaining credit reported by the billing endpoint.
type CreditBalance struct {
	TotalGranted   float64 `json:"total_granted"`
	TotalUsed      float64 `json:"total_used"`
	TotalAvailable float64 `json:"total_available"`
}

// OpenAIService talks to an OpenAI-compatible REST endpoint: file upload,
// structured-output generation, file deletion, model listing and the billing
// balance query. One outstanding request per operation, no retries; timeouts
// are the transport's concern.
type OpenAIService struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	sessionKey string
	model      string
	logger     *zap.Logger

	cleanup sync.WaitGroup
}

func NewOpenAIService(cfg *config.OpenAIConfig, logger *zap.Logger) *OpenAIService {
	return &OpenAIService{
		httpClient: &http.Client{},
		baseURL:    NormalizeBaseURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		sessionKey: cfg.SessionKey,
		model:      cfg.Model,
		logger:     logger,
	}
}

// NormalizeBaseURL canonicalizes a user-supplied endpoint. Empty or unparsable
// input falls back to the default; a missing scheme gets https; localhost and
// *.local hosts may stay on http; the canonical OpenAI host is forced to https
// with a /v1 path prefix; everything else passes through with duplicate and
// trailing slashes collapsed and the fragment stripped.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultBaseURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return DefaultBaseURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return DefaultBaseURL
	}

	host := u.Hostname()
	if u.Scheme == "http" && !isLocalHost(host) {
		u.Scheme = "https"
	}

	path := collapseSlashes(u.Path)
	if host == openAIHost {
		u.Scheme = "https"
		if !strings.HasPrefix(path, "/v1") {
			path = "/v1" + path
		}
	}

	return u.Scheme + "://" + u.Host + path
}

func isLocalHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || strings.HasSuffix(host, ".local")
}

// collapseSlashes removes duplicate and trailing slashes from a URL path.
func collapseSlashes(path string) string {
	parts := strings.Split(path, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return "/" + strings.Join(kept, "/")
}

// UploadFile sends the file to POST /files and returns the remote file id.
func (s *OpenAIService) UploadFile(ctx context.Context, file io.Reader, fileName string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("purpose", "user_data"); err != nil {
		return "", fmt.Errorf("failed to write purpose field: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		if ext == ".pdf" {
			mimeType = "application/pdf"
		} else {
			mimeType = "application/octet-stream"
		}
	}

	part, err := writer.CreatePart(map[string][]string{
		"Content-Type":        {mimeType},
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/files", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", s.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", readAPIError(resp)
	}

	var uploadResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if uploadResp.ID == "" {
		return "", errors.New("upload response carries no file id")
	}

	s.logger.Info("File uploaded", zap.String("file_id", uploadResp.ID))
	return uploadResp.ID, nil
}

// DeleteFile removes a previously uploaded remote file.
func (s *OpenAIService) DeleteFile(ctx context.Context, fileID string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", s.baseURL+"/files/"+fileID, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return s.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return readAPIError(resp)
	}
	return nil
}

// ListModels queries GET /models and returns the available model ids.
func (s *OpenAIService) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, s.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}

	var modelsResp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return nil, fmt.Errorf("failed to decode models response: %w", err)
	}

	var modelIDs []string
	for _, model := range modelsResp.Data {
		modelIDs = append(modelIDs, model.ID)
	}
	return modelIDs, nil
}

// GetCreditBalance queries the billing credit_grants endpoint. The endpoint
// only accepts a browser session key; without one, or when access is denied,
// a BalanceUnavailableError carries the reason instead of a hard failure.
func (s *OpenAIService) GetCreditBalance(ctx context.Context) (*CreditBalance, error) {
	if s.sessionKey == "" {
		return nil, &BalanceUnavailableError{Reason: BalanceReasonSessionKeyRequired}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/dashboard/billing/credit_grants", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.sessionKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, s.transportError(ctx, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &BalanceUnavailableError{Reason: BalanceReasonForbidden}
	case http.StatusNotFound:
		return nil, &BalanceUnavailableError{Reason: BalanceReasonUnsupported}
	default:
		return nil, readAPIError(resp)
	}

	var balance CreditBalance
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		return nil, fmt.Errorf("failed to decode balance response: %w", err)
	}
	return &balance, nil
}

// transportError distinguishes cancellation, which is neither success nor
// failure, from real network-level failures.
func (s *OpenAIService) transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("could not reach the extraction service: %w", err)
}

// readAPIError extracts a status + message error from a non-2xx response,
// falling back to the raw body when it is not the expected JSON shape.
func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errBody struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(body, &errBody); err == nil {
		message = errBody.Error.Message
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = "request failed"
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// scheduleFileCleanup deletes the remote file after the main result path has
// settled. It is detached from the caller's context; failures are logged and
// never propagated. Tests can await it via WaitCleanup.
func (s *OpenAIService) scheduleFileCleanup(fileID string) {
	s.cleanup.Add(1)
	go func() {
		defer s.cleanup.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.DeleteFile(ctx, fileID); err != nil {
			s.logger.Warn("Failed to delete uploaded file",
				zap.String("file_id", fileID),
				zap.Error(err),
			)
		}
	}()
}

// WaitCleanup blocks until all pending remote file deletions finish.
func (s *OpenAIService) WaitCleanup() {
	s.cleanup.Wait()
}
