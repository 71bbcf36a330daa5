package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"

	"github.com/a-h/docsum/extract"
	"github.com/a-h/docsum/models"
	"github.com/a-h/jsonapi"
)

// New creates a client. The token is an API key or a session token.
func New(baseURL, token string) Client {
	return Client{
		baseURL: baseURL,
		token:   token,
	}
}

type Client struct {
	baseURL string
	token   string
}

func (c Client) SummarizePost(ctx context.Context, fileName string, r io.Reader) (resp models.SummarizePostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("summarize").String()
	if err != nil {
		return resp, err
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(fileName)))
	h.Set("Content-Type", contentType(fileName))
	fw, err := mw.CreatePart(h)
	if err != nil {
		return resp, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err = io.Copy(fw, r); err != nil {
		return resp, fmt.Errorf("failed to write form file: %w", err)
	}
	if err = mw.Close(); err != nil {
		return resp, fmt.Errorf("failed to close form: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return resp, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	res, err := jsonapi.Raw(httpReq, c.authorization())
	if err != nil {
		return resp, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return resp, jsonapi.InvalidStatusError{
			Status: res.StatusCode,
			Body:   string(body),
		}
	}
	if err = json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return resp, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

func contentType(fileName string) string {
	switch extract.FromExtension(extract.Ext(fileName)) {
	case extract.FormatDOCX:
		return extract.MIMETypeDOCX
	case extract.FormatTXT:
		return extract.MIMETypeTXT
	}
	return "application/octet-stream"
}

func (c Client) SummarizeGet(ctx context.Context) (resp models.SummarizeGetResponse, err error) {
	return get[models.SummarizeGetResponse](ctx, c, "summarize")
}

func (c Client) HistoryGet(ctx context.Context) (resp []models.HistoryItem, err error) {
	return get[[]models.HistoryItem](ctx, c, "history")
}

func (c Client) authorization() jsonapi.Opt {
	return jsonapi.WithRequestHeader("Authorization", "Bearer "+c.token)
}

func get[TResp any](ctx context.Context, c Client, path string) (resp TResp, err error) {
	url, err := jsonapi.URL(c.baseURL).Path(path).String()
	if err != nil {
		return resp, err
	}
	resp, ok, err := jsonapi.Get[TResp](ctx, url, c.authorization())
	if err != nil {
		return resp, err
	}
	if !ok {
		return resp, jsonapi.InvalidStatusError{Status: http.StatusNotFound}
	}
	return resp, nil
}
