package indexing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

type ClientOptions struct {
	BaseURL    string
	APIKey     string
	Collection string
	HTTPClient *http.Client
}

// Client is the HTTP implementation of Indexer.
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	http       *http.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("indexer base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		collection: opts.Collection,
		http:       httpClient,
	}, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("indexer returned %d: %s", e.StatusCode, e.Message)
}

type ingestResponse struct {
	ContentID string `json:"content_id"`
}

type queryRequest struct {
	Collection   string   `json:"collection"`
	Instructions []string `json:"instructions"`
	ContextIDs   []string `json:"context_ids"`
	Question     string   `json:"question"`
}

type queryResponse struct {
	Content json.RawMessage `json:"content"`
}

func (c *Client) Ingest(ctx context.Context, doc Document) (string, error) {
	if doc.Body == nil {
		return "", errors.New("document body is required")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeDocument(mw, c.collection, doc))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/documents", pr)
	if err != nil {
		pr.Close()
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out ingestResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.ContentID == "" {
		return "", errors.New("indexer returned an empty content id")
	}
	return out.ContentID, nil
}

func writeDocument(mw *multipart.Writer, collection string, doc Document) error {
	fields := [][2]string{
		{"collection", collection},
		{"path", doc.Path},
		{"task_id", strconv.FormatUint(uint64(doc.TaskID), 10)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", doc.Filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, doc.Body); err != nil {
		return err
	}
	return mw.Close()
}

func (c *Client) Query(ctx context.Context, q Query) (string, error) {
	body, err := json.Marshal(queryRequest{
		Collection:   c.collection,
		Instructions: nonNil(q.Instructions),
		ContextIDs:   nonNil(q.ContextIDs),
		Question:     q.Question,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/query", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out queryResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return ContentText(out.Content), nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("failed to read indexer response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode indexer response: %w", err)
	}
	return nil
}

func errorMessage(body []byte, status string) string {
	var payload struct {
		Error  string          `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if detail := ContentText(payload.Detail); detail != "" {
			return detail
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return status
}

// ContentText flattens an answer of any JSON shape to text. Strings are
// returned verbatim, null becomes "", anything else is compact JSON.
func ContentText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var buf bytes.Buffer
	if json.Compact(&buf, raw) == nil {
		return buf.String()
	}
	return string(raw)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
