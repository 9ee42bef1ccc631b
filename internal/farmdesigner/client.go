// Package farmdesigner talks to the FarmBot web app API and the local device farmware API.
package farmdesigner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Environment variables set by the device when running a farmware
const (
	EnvAPIToken      = "API_TOKEN"
	EnvFarmwareURL   = "FARMWARE_URL"
	EnvFarmwareToken = "FARMWARE_TOKEN"
)

// Message types accepted by send_message
const (
	MessageSuccess = "success"
	MessageInfo    = "info"
	MessageWarn    = "warn"
	MessageError   = "error"
)

// DefaultTimeout applies to every request when no HTTP client is given
const DefaultTimeout = 30 * time.Second

// ErrMissingToken is returned when no API token is available
var ErrMissingToken = errors.New("missing API token")

// APIError is returned for non-2xx responses
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Options configures a Client
type Options struct {
	// APIURL is the web app API base, e.g. "https://my.farmbot.io/api/".
	// When empty it is derived from the token issuer.
	APIURL string

	// APIToken authorizes web app requests
	APIToken string

	// FarmwareURL is the device farmware API base. When empty, Log only writes to the logger.
	FarmwareURL string

	// FarmwareToken authorizes device requests
	FarmwareToken string

	// HTTPClient defaults to a client with DefaultTimeout
	HTTPClient *http.Client
}

// OptionsFromEnv reads the device environment
func OptionsFromEnv(getenv func(key string) string) Options {
	return Options{
		APIToken:      getenv(EnvAPIToken),
		FarmwareURL:   getenv(EnvFarmwareURL),
		FarmwareToken: getenv(EnvFarmwareToken),
	}
}

// Client creates farm designer records and sends device messages
type Client struct {
	apiURL        *url.URL
	apiToken      string
	farmwareURL   *url.URL
	farmwareToken string
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewClient creates a new client
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.APIToken == "" {
		return nil, ErrMissingToken
	}

	rawAPIURL := opts.APIURL
	if rawAPIURL == "" {
		derived, err := APIURLFromToken(opts.APIToken)
		if err != nil {
			return nil, fmt.Errorf("failed to derive API URL: %w", err)
		}
		rawAPIURL = derived
	}
	apiURL, err := url.Parse(rawAPIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", rawAPIURL, err)
	}

	var farmwareURL *url.URL
	if opts.FarmwareURL != "" {
		farmwareURL, err = url.Parse(opts.FarmwareURL)
		if err != nil {
			return nil, fmt.Errorf("invalid farmware URL %q: %w", opts.FarmwareURL, err)
		}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{
		apiURL:        apiURL,
		apiToken:      opts.APIToken,
		farmwareURL:   farmwareURL,
		farmwareToken: opts.FarmwareToken,
		httpClient:    httpClient,
		logger:        logger,
	}, nil
}

// AddPlant creates a plant point and returns the record as stored by the web app
func (c *Client) AddPlant(ctx context.Context, plant Plant) (*Plant, error) {
	plant.PointerType = PointerTypePlant

	created := &Plant{}
	if err := c.postJSON(ctx, c.apiURL.JoinPath("points"), c.apiToken, plant, created); err != nil {
		return nil, fmt.Errorf("failed to add plant at (%d, %d): %w", plant.X, plant.Y, err)
	}
	return created, nil
}

// Log sends a message to the device log. Without a farmware URL the message
// only goes to the process logger.
func (c *Client) Log(ctx context.Context, message, messageType string) error {
	c.logger.Info(message, "message_type", messageType)

	if c.farmwareURL == nil {
		return nil
	}

	node := celeryScript{
		Kind: "send_message",
		Args: sendMessageArgs{
			Message:     message,
			MessageType: messageType,
		},
	}
	if err := c.postJSON(ctx, c.farmwareURL.JoinPath("api", "v1", "celery_script"), c.farmwareToken, node, nil); err != nil {
		return fmt.Errorf("failed to send device message: %w", err)
	}
	return nil
}

// postJSON posts body as JSON and decodes the response into out when it is not nil
func (c *Client) postJSON(ctx context.Context, u *url.URL, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("sending request", "method", req.Method, "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// APIURLFromToken derives the web app API base from the "iss" claim of a token.
// An issuer of "//my.farmbot.io:443" yields "https://my.farmbot.io:443/api/";
// any other port yields plain http.
func APIURLFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	iss, err := claims.GetIssuer()
	if err != nil {
		return "", fmt.Errorf("failed to read token issuer: %w", err)
	}
	if iss == "" {
		return "", fmt.Errorf("token has no issuer")
	}

	if i := strings.Index(iss, "//"); i >= 0 {
		iss = iss[i+2:]
	}
	host := strings.TrimRight(iss, "/")

	scheme := "http"
	if _, port, err := net.SplitHostPort(host); err != nil || port == "443" {
		scheme = "https"
	}

	return scheme + "://" + host + "/api/", nil
}
