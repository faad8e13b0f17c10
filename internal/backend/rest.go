package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// RESTClient inserts rows through a PostgREST-style hosted data service.
type RESTClient struct {
	client *resty.Client
	table  string
}

type insertRow struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type restErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func NewRESTClient(cfg Config) *RESTClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("apikey", cfg.APIKey).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &RESTClient{client: client, table: cfg.Table}
}

func (c *RESTClient) InsertWaitlistEntry(ctx context.Context, entry Entry) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(insertRow{Email: entry.Email, Name: entry.Name}).
		SetError(&restErrorBody{}).
		Post("/rest/v1/" + c.table)
	if err != nil {
		return &TransportError{Op: "insert", Err: err}
	}

	if resp.IsSuccess() {
		return nil
	}

	return restError(resp)
}

// restError builds the failure for a non-2xx response. resty decodes JSON
// bodies into restErrorBody; any other non-empty body means the response did
// not come from the data service.
func restError(resp *resty.Response) error {
	backendErr := &Error{StatusCode: resp.StatusCode()}

	if len(strings.TrimSpace(resp.String())) == 0 {
		return backendErr
	}

	if contentType := resp.Header().Get("Content-Type"); !resty.IsJSONType(contentType) {
		return &TransportError{
			Op:  "insert",
			Err: fmt.Errorf("malformed error response (status %d, content type %q)", resp.StatusCode(), contentType),
		}
	}

	if payload, ok := resp.Error().(*restErrorBody); ok && payload != nil {
		backendErr.Code = payload.Code
		backendErr.Message = payload.Message
		backendErr.Details = payload.Details
		backendErr.Hint = payload.Hint
	}

	return backendErr
}
