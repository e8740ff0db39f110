package pos

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	aqm "github.com/appetiteclub/apt"
)

// LogPrinter writes documents to the log. Used when no physical printer
// bridge is configured, and in development.
type LogPrinter struct {
	logger aqm.Logger
}

func NewLogPrinter(logger aqm.Logger) *LogPrinter {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &LogPrinter{logger: logger}
}

func (p *LogPrinter) Print(ctx context.Context, doc string) error {
	p.logger.Infof("ticket:\n%s", doc)
	return nil
}

// HTTPPrinter forwards documents to a thermal printer bridge as plain
// text.
type HTTPPrinter struct {
	url        string
	httpClient *http.Client
}

func NewHTTPPrinter(url string) *HTTPPrinter {
	return &HTTPPrinter{
		url: url,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (p *HTTPPrinter) Print(ctx context.Context, doc string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewBufferString(doc))
	if err != nil {
		return fmt.Errorf("create print request failed: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("printer bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("printer bridge returned status %d", resp.StatusCode)
	}
	return nil
}
