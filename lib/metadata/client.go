package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ether/revpanel/lib/exception"
	"github.com/ether/revpanel/lib/models/revision"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// ClientFetcher asks a remote revpanel (or any service speaking the same
// metadata API) for revision metadata.
type ClientFetcher struct {
	baseURL string
	client  *retryablehttp.Client
}

type ClientOptions struct {
	RetryMax int
	Timeout  time.Duration
	Logger   *zap.SugaredLogger
}

func NewClientFetcher(baseURL string, options ClientOptions) *ClientFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = options.RetryMax
	client.RetryWaitMin = 50 * time.Millisecond
	client.RetryWaitMax = time.Second
	if options.Timeout > 0 {
		client.HTTPClient.Timeout = options.Timeout
	}
	if options.Logger != nil {
		client.Logger = leveledLogger{options.Logger}
	} else {
		client.Logger = nil
	}

	return &ClientFetcher{baseURL: baseURL, client: client}
}

// MetadataURL is the API path of a revision's metadata. The empty revision
// maps to the "latest" route.
func MetadataURL(baseURL string, applicationName string, rev string) string {
	path := baseURL + "/api/v1/applications/" + url.PathEscape(applicationName) + "/revisions/"
	if rev != "" {
		path += url.PathEscape(rev) + "/"
	}
	return path + "metadata"
}

func (c *ClientFetcher) RevisionMetadata(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, MetadataURL(c.baseURL, applicationName, rev), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error requesting revision metadata: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, exception.NewRevisionNotFoundError(applicationName, rev, nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("metadata service answered %d: %s", resp.StatusCode, body)
	}

	var m revision.RevisionMetadata
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("error decoding revision metadata: %w", err)
	}
	return &m, nil
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Infow(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warnw(msg, keysAndValues...)
}

var _ retryablehttp.LeveledLogger = leveledLogger{}
