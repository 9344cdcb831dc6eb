// Package gcs talks to the Globalization Content Service REST API: asset
// listing, content download, translated-content upload, and task completion.
package gcs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"gcsbridge/internal/adapters/adobeio"
	perr "gcsbridge/internal/platform/errors"
	"gcsbridge/internal/platform/logger"
)

// AssetURL is one of the storage URLs attached to an asset
type AssetURL struct {
	Locale  string `json:"locale"`
	URL     string `json:"url"`
	URLType string `json:"urlType"`
}

// Asset is a translatable unit inside a GCS task
type Asset struct {
	Name      string     `json:"name"`
	AssetURLs []AssetURL `json:"assetUrls"`
}

// ObjectKey returns the tenant-scoped storage key for this asset's
// NORMALIZED source-locale URL, with query parameters stripped.
// Returns "" when no matching URL is present.
func (a Asset) ObjectKey(tenantID, sourceLocale string) string {
	for _, u := range a.AssetURLs {
		if u.URLType != "NORMALIZED" || u.Locale != sourceLocale || u.URL == "" {
			continue
		}
		start := strings.Index(u.URL, tenantID)
		if start < 0 {
			continue
		}
		key, _, _ := strings.Cut(u.URL[start:], "?")
		return key
	}
	return ""
}

// Options configures the GCS client
type Options struct {
	BaseURL string // e.g. https://gcs.adobe.io/v1
}

// Client implements the GCS asset operations over the shared Adobe transport
type Client struct {
	api  *adobeio.Client
	opts Options
	log  logger.Logger
}

// NewClient creates a GCS client
func NewClient(api *adobeio.Client, o Options) *Client {
	return &Client{api: api, opts: o, log: *logger.Named("gcs")}
}

// Assets lists the assets of a task for one target locale
func (c *Client) Assets(ctx context.Context, token, projectID, taskID, targetLocale, tenantID string) ([]Asset, error) {
	u := fmt.Sprintf("%s/projects/%s/tasks/%s/assets/%s?tenantId=%s",
		c.opts.BaseURL,
		url.PathEscape(projectID), url.PathEscape(taskID), url.PathEscape(targetLocale),
		url.QueryEscape(tenantID))

	var out struct {
		Response []Asset `json:"response"`
	}
	if err := c.api.DoJSON(ctx, http.MethodGet, u, token, nil, "", &out); err != nil {
		return nil, perr.WithOp(err, "gcs.assets")
	}
	return out.Response, nil
}

// AssetContent downloads the raw content stored under objectKey
func (c *Client) AssetContent(ctx context.Context, token, tenantID, objectKey string) ([]byte, error) {
	u := fmt.Sprintf("%s/assetContent?tenantId=%s&objectKey=%s",
		c.opts.BaseURL, url.QueryEscape(tenantID), url.QueryEscape(objectKey))
	return c.fetchBytes(ctx, token, u, "gcs.asset_content")
}

// FetchURL downloads asset content from a direct storage URL, as carried by
// retranslation events.
func (c *Client) FetchURL(ctx context.Context, token, assetURL string) ([]byte, error) {
	return c.fetchBytes(ctx, token, assetURL, "gcs.fetch_url")
}

func (c *Client) fetchBytes(ctx context.Context, token, u, op string) ([]byte, error) {
	resp, err := c.api.Do(ctx, http.MethodGet, u, token, nil, "")
	if err != nil {
		return nil, perr.WithOp(err, op)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "asset content read failed")
	}
	if len(body) == 0 {
		return nil, perr.Malformedf("asset content is empty")
	}
	c.log.Debug().Int("bytes", len(body)).Msg("asset content fetched")
	return body, nil
}

// Upload pushes translated content to GCS storage and returns the stored URL.
// The file part is named {assetName}_{locale}.xlf to match what completion
// expects downstream.
func (c *Client) Upload(ctx context.Context, token, tenantID, assetName, targetLocale string, content []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", fmt.Sprintf("%s_%s.xlf", assetName, targetLocale))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "multipart file part failed")
	}
	if _, err := fw.Write(content); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "multipart write failed")
	}
	if err := mw.WriteField("tenantId", tenantID); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "multipart field failed")
	}
	if err := mw.Close(); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "multipart close failed")
	}

	var out struct {
		Response string `json:"response"`
	}
	u := c.opts.BaseURL + "/uploadToStorage"
	if err := c.api.DoJSON(ctx, http.MethodPost, u, token, buf.Bytes(), mw.FormDataContentType(), &out); err != nil {
		return "", perr.WithOp(err, "gcs.upload")
	}
	if out.Response == "" {
		return "", perr.Malformedf("upload response missing stored url")
	}
	c.log.Debug().Str("asset", assetName).Str("locale", targetLocale).Msg("translated content uploaded")
	return out.Response, nil
}

type completePayload struct {
	AssetName         string            `json:"assetName"`
	TenantID          string            `json:"tenantId"`
	TargetAssetLocale targetAssetLocale `json:"targetAssetLocale"`
	TargetAssetURL    targetAssetURL    `json:"targetAssetUrl"`
}

type targetAssetLocale struct {
	Locale string `json:"locale"`
	Status string `json:"status"`
}

type targetAssetURL struct {
	Locale  string `json:"locale"`
	URL     string `json:"url"`
	URLType string `json:"urlType"`
}

// Complete marks an asset's target locale as TRANSLATED, pointing GCS at the
// uploaded translation.
func (c *Client) Complete(ctx context.Context, token, projectID, taskID, assetName, targetLocale, tenantID, translatedURL string) error {
	u := fmt.Sprintf("%s/projects/%s/tasks/%s/assets/%s/locales/%s/complete",
		c.opts.BaseURL,
		url.PathEscape(projectID), url.PathEscape(taskID),
		url.PathEscape(assetName), url.PathEscape(targetLocale))

	payload := completePayload{
		AssetName: assetName,
		TenantID:  tenantID,
		TargetAssetLocale: targetAssetLocale{
			Locale: targetLocale,
			Status: "TRANSLATED",
		},
		TargetAssetURL: targetAssetURL{
			Locale:  targetLocale,
			URL:     translatedURL,
			URLType: "TRANSLATED",
		},
	}
	body, err := jsonBody(payload)
	if err != nil {
		return err
	}
	if err := c.api.DoJSON(ctx, http.MethodPut, u, token, body, "application/json", nil); err != nil {
		return perr.WithOp(err, "gcs.complete")
	}
	c.log.Info().Str("asset", assetName).Str("locale", targetLocale).Msg("asset translation completed")
	return nil
}

func jsonBody(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "payload marshal failed")
	}
	return b, nil
}
