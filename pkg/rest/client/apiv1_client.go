// Package client provides a basic REST client for okan
package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okanmail/okan/pkg/rest/model"
)

// Client accesses the okan REST API v1
type Client struct {
	restClient
}

// New creates a new v1 REST API client given the base URL of an okan server, ex:
// "http://localhost:9000"
func New(baseURL string, opts ...func(*ClientOptions)) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	options := getDefaultClientOptions()
	for _, opt := range opts {
		opt(options)
	}
	c := &Client{
		restClient{
			client: &http.Client{
				Timeout:   options.timeout,
				Transport: options.transport,
			},
			baseURL: parsedURL,
		},
	}
	return c, nil
}

// CheckMessage submits an RFC 5322 message for checking and returns its check list.
func (c *Client) CheckMessage(ctx context.Context, source []byte) (*CheckList, error) {
	var cl *model.JSONCheckListV1
	err := c.doJSON(ctx, "POST", "/api/v1/checklist", "message/rfc822", source, &cl)
	if err != nil {
		return nil, err
	}
	return &CheckList{JSONCheckListV1: cl, client: c}, nil
}

// ListRecords returns up to limit audit record headers, newest first.  A limit of 0 returns all
// records.
func (c *Client) ListRecords(ctx context.Context, limit int) ([]*RecordHeader, error) {
	uri := "/api/v1/audit"
	if limit > 0 {
		uri += "?limit=" + strconv.Itoa(limit)
	}
	var headers []*model.JSONRecordHeaderV1
	if err := c.doJSON(ctx, "GET", uri, "", nil, &headers); err != nil {
		return nil, err
	}
	result := make([]*RecordHeader, len(headers))
	for i, h := range headers {
		result[i] = &RecordHeader{JSONRecordHeaderV1: h, client: c}
	}
	return result, nil
}

// GetRecord returns the audit record with the given ID, including its check list.
func (c *Client) GetRecord(ctx context.Context, id string) (*Record, error) {
	var rec *model.JSONRecordV1
	err := c.doJSON(ctx, "GET", "/api/v1/audit/"+url.PathEscape(id), "", nil, &rec)
	if err != nil {
		return nil, err
	}
	return &Record{JSONRecordV1: rec, client: c}, nil
}

// DeleteRecord deletes a single audit record.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", "/api/v1/audit/"+url.PathEscape(id), "", nil, nil)
}

// PurgeRecords deletes every audit record.
func (c *Client) PurgeRecords(ctx context.Context) error {
	return c.doJSON(ctx, "DELETE", "/api/v1/audit", "", nil, nil)
}

// CheckList is the check list of a submitted message.
type CheckList struct {
	*model.JSONCheckListV1
	client *Client
}

// Record returns the audit record stored for this check.  It fails with ErrNotFound when the
// server keeps no audit trail.
func (cl *CheckList) Record(ctx context.Context) (*Record, error) {
	if cl.ID == "" {
		return nil, ErrNotFound
	}
	return cl.client.GetRecord(ctx, cl.ID)
}

// RecordHeader summarizes an audit record sans check list.
type RecordHeader struct {
	*model.JSONRecordHeaderV1
	client *Client
}

// GetRecord returns this record with its check list.
func (h *RecordHeader) GetRecord(ctx context.Context) (*Record, error) {
	return h.client.GetRecord(ctx, h.ID)
}

// Delete deletes this record.
func (h *RecordHeader) Delete(ctx context.Context) error {
	return h.client.DeleteRecord(ctx, h.ID)
}

// Record is an audit record including its check list.
type Record struct {
	*model.JSONRecordV1
	client *Client
}

// Delete deletes this record.
func (r *Record) Delete(ctx context.Context) error {
	return r.client.DeleteRecord(ctx, r.ID)
}
