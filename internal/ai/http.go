package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// HTTPClient is a JSON client for the assistant service.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // document analysis is slow
		},
	}
}

var _ Client = (*HTTPClient)(nil)

type recommendationResponse struct {
	Recommendations []string `json:"recommendations"`
}

// Recommend posts the scenario to /recommendations.
func (c *HTTPClient) Recommend(ctx context.Context, req RecommendationRequest) ([]string, error) {
	var out recommendationResponse
	if err := c.postJSON(ctx, "recommend", "/recommendations", req, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

// AnalyzeReceipt uploads the receipt to /receipts/analyze.
func (c *HTTPClient) AnalyzeReceipt(ctx context.Context, doc Document) (*ReceiptAnalysis, error) {
	body, err := c.postDocument(ctx, "analyze-receipt", "/receipts/analyze", doc)
	if err != nil {
		return nil, err
	}

	var analysis ReceiptAnalysis
	if err := json.Unmarshal(body, &analysis); err != nil {
		return nil, badResponse("analyze-receipt", err)
	}
	if err := json.Unmarshal(body, &analysis.Raw); err != nil {
		return nil, badResponse("analyze-receipt", err)
	}
	return &analysis, nil
}

// ParseTaxCard uploads the tax card to /taxcards/parse.
func (c *HTTPClient) ParseTaxCard(ctx context.Context, doc Document) (*TaxCardAnalysis, error) {
	body, err := c.postDocument(ctx, "parse-taxcard", "/taxcards/parse", doc)
	if err != nil {
		return nil, err
	}

	var analysis TaxCardAnalysis
	if err := json.Unmarshal(body, &analysis); err != nil {
		return nil, badResponse("parse-taxcard", err)
	}
	return &analysis, nil
}

// Chat posts the conversation to /chat.
func (c *HTTPClient) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	var reply ChatReply
	if err := c.postJSON(ctx, "chat", "/chat", req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, op, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(op, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return badResponse(op, err)
	}
	return nil
}

func (c *HTTPClient) postDocument(ctx context.Context, op, path string, doc Document) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", doc.Filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, fmt.Errorf("write file data: %w", err)
	}
	if err := writer.WriteField("content_type", doc.ContentType); err != nil {
		return nil, fmt.Errorf("write content_type: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(op, req)
}

// do executes req and classifies failures into ServiceErrors.
func (c *HTTPClient) do(op string, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &ServiceError{Code: ErrServiceTimeout, Operation: op, Message: "request timed out", Retryable: true, Cause: err}
		}
		return nil, &ServiceError{Code: ErrServiceUnavailable, Operation: op, Message: "request failed", Retryable: true, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ServiceError{Code: ErrServiceUnavailable, Operation: op, Message: "read response", Retryable: true, Cause: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &ServiceError{Code: ErrRateLimited, Operation: op, Message: "rate limited", Retryable: true}
	case resp.StatusCode >= 500:
		return nil, &ServiceError{Code: ErrServiceUnavailable, Operation: op, Retryable: true,
			Message: fmt.Sprintf("status %d, body: %s", resp.StatusCode, string(body))}
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, &ServiceError{Code: ErrInvalidDocument, Operation: op,
			Message: fmt.Sprintf("status %d, body: %s", resp.StatusCode, string(body))}
	default:
		return nil, &ServiceError{Code: ErrBadResponse, Operation: op,
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
}

func badResponse(op string, err error) error {
	return &ServiceError{Code: ErrBadResponse, Operation: op, Message: "decode response", Cause: err}
}
