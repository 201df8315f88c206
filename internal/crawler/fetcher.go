package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"procfeed/internal/config"
	"procfeed/internal/logger"
	"procfeed/pkg/utils"
)

const excerptRunes = 200

// ErrUndecodableBody is returned when a body cannot be turned into UTF-8 text.
var ErrUndecodableBody = errors.New("body is not decodable text")

// Document is a fetched body that passed the markup and JSON checks.
type Document struct {
	FetchedAt   time.Time
	URL         string
	ContentType string
	Body        []byte
	Status      int
	Duration    time.Duration
}

// FetchOptions tunes one fetch.
type FetchOptions struct {
	// Strict requires the URL host to contain one of the allowed domains.
	Strict bool
}

// Fetcher retrieves source documents. It never retries; callers wrap it.
type Fetcher struct {
	client *resty.Client
	log    *logger.Logger
	cfg    config.FetchConfig
}

// NewFetcher creates a fetcher from fetch settings.
func NewFetcher(cfg config.FetchConfig, log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Discard()
	}

	headers := map[string]string{
		"User-Agent": cfg.UserAgent,
		"Accept":     cfg.Accept,
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	client := resty.New().
		SetTimeout(cfg.GetTimeout()).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	for k, v := range utils.BuildHeaders(headers) {
		if len(v) > 0 {
			client.SetHeader(k, v[0])
		}
	}

	if limit := cfg.MaxBodyBytes(); limit > 0 {
		client.SetResponseBodyLimit(int(limit))
	}

	return &Fetcher{
		client: client,
		log:    log,
		cfg:    cfg,
	}
}

// Fetch retrieves rawURL and checks that the body is JSON. Failures are
// *PolicyError, *TransportError or *FormatError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts FetchOptions) (*Document, error) {
	rawURL = strings.TrimSpace(rawURL)

	if !utils.IsValidURL(rawURL) {
		return nil, &PolicyError{URL: rawURL, Reason: "not an absolute http(s) URL"}
	}

	if opts.Strict && !utils.HostAllowed(rawURL, f.cfg.AllowedDomains) {
		return nil, &PolicyError{
			URL:    rawURL,
			Reason: "host is not one of " + strings.Join(f.cfg.AllowedDomains, ", "),
		}
	}

	referer := f.cfg.Referer
	if referer == "" {
		referer = utils.OriginOf(rawURL)
	}

	start := time.Now()

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Referer", referer).
		Get(rawURL)

	duration := time.Since(start)

	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}

	contentType := resp.Header().Get("Content-Type")

	text, err := decodeText(resp.Body(), contentType)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Status: resp.StatusCode(), Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &TransportError{
			URL:     rawURL,
			Status:  resp.StatusCode(),
			Excerpt: utils.Excerpt(text, excerptRunes),
		}
	}

	if err := checkPayload(rawURL, text); err != nil {
		return nil, err
	}

	f.log.Debug("fetched",
		"url", rawURL,
		"status", resp.StatusCode(),
		"bytes", len(text),
		"content_type", contentType,
		"duration", duration,
	)

	return &Document{
		FetchedAt:   start.UTC(),
		URL:         rawURL,
		ContentType: contentType,
		Body:        []byte(text),
		Status:      resp.StatusCode(),
		Duration:    duration,
	}, nil
}

// ReadLocalFile loads a payload from disk and applies the same checks as Fetch.
func (f *Fetcher) ReadLocalFile(filePath string) (*Document, error) {
	start := time.Now()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read local file %s: %w", filePath, err)
	}

	text, err := decodeText(data, "")
	if err != nil {
		return nil, fmt.Errorf("failed to decode local file %s: %w", filePath, err)
	}

	if err := checkPayload(filePath, text); err != nil {
		return nil, err
	}

	return &Document{
		FetchedAt:   start.UTC(),
		URL:         filePath,
		ContentType: "application/json",
		Body:        []byte(text),
		Duration:    time.Since(start),
	}, nil
}

// checkPayload rejects markup before attempting to validate JSON, so an expired
// session page is reported as such.
func checkPayload(source, text string) error {
	if looksLikeMarkup(text) {
		return &FormatError{URL: source, Kind: FormatMarkup, Excerpt: utils.Excerpt(text, excerptRunes)}
	}

	if !gjson.Valid(text) {
		return &FormatError{URL: source, Kind: FormatInvalidJSON, Excerpt: utils.Excerpt(text, excerptRunes)}
	}

	return nil
}

func looksLikeMarkup(text string) bool {
	head := strings.TrimLeft(text, " \t\r\n\ufeff")
	if strings.HasPrefix(head, "{") || strings.HasPrefix(head, "[") {
		return false
	}

	if len(head) > 1024 {
		head = head[:1024]
	}

	lower := strings.ToLower(head)

	return strings.Contains(lower, "<!doctype") ||
		strings.HasPrefix(lower, "<html") ||
		strings.HasPrefix(lower, "<?xml") ||
		strings.HasPrefix(lower, "<head") ||
		strings.HasPrefix(lower, "<body")
}

// decodeText returns body as UTF-8, transcoding from the declared or sniffed charset
// when it is not valid UTF-8 already.
func decodeText(data []byte, contentType string) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if utf8.Valid(data) {
		return string(data), nil
	}

	enc, name, _ := charset.DetermineEncoding(data, contentType)
	reader := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("transcode from %s: %w", name, err)
	}

	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("%w: transcoded from %s", ErrUndecodableBody, name)
	}

	return string(decoded), nil
}
