package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Extractor turns an uploaded document (by URL) into plain text.
type Extractor interface {
	ExtractText(ctx context.Context, documentURL string) (string, error)
}

// OcrClient calls an external OCR parsing service over HTTP.
type OcrClient struct {
	baseURL    string
	parseMode  string
	httpClient *http.Client
}

func NewOcrClient(baseURL, parseMode string, timeoutSeconds int) *OcrClient {
	return &OcrClient{
		baseURL:   baseURL,
		parseMode: parseMode,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

type parseRequest struct {
	Document         string `json:"document"`
	ParseMode        string `json:"parse_mode"`
	IncludeRawResult bool   `json:"include_raw_result"`
}

type parseResponse struct {
	Success     bool   `json:"success"`
	TextContent string `json:"text_content"`
	Error       string `json:"error"`
}

func (c *OcrClient) ExtractText(ctx context.Context, documentURL string) (string, error) {
	payload, err := json.Marshal(parseRequest{
		Document:         documentURL,
		ParseMode:        c.parseMode,
		IncludeRawResult: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal parse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr service returned status %d", resp.StatusCode)
	}

	var result parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode parse response: %w", err)
	}
	if !result.Success {
		return "", fmt.Errorf("ocr parse failed: %s", result.Error)
	}
	return result.TextContent, nil
}
