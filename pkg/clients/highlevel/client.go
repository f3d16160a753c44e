package highlevel

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sendahug/hug-api/pkg/config"
	"github.com/sendahug/hug-api/pkg/logger"
)

// apiVersion is the fixed HighLevel API version header sent on every call.
const apiVersion = "2021-07-28"

// Client defines the interface for interacting with the HighLevel CRM
type Client interface {
	SearchContactByEmail(email string) (*Contact, error)
	CreateContact(data ContactData) (*Contact, error)
	FindOrCreateContact(email string, data ContactData) (*Contact, error)
	GetCustomFieldDefinitions() (map[string]string, error)
	UpdateContactCustomFields(contactID string, updates map[string]interface{}) (*Contact, error)
	AddTagsToContact(contactID string, tags ...string) ([]string, error)
	DeleteContact(contactID string) error
	DeleteContactByEmail(email string) (bool, error)
	SendEmailTemplate(contactID, templateID string) error
	SendEmailTemplateByEmail(email, templateID string) error
}

type clientImpl struct {
	apiKey     string
	locationID string

	// Two upstream bases with the same auth and error contract. They are
	// not interchangeable: each operation targets the base it belongs to.
	restBase     string
	servicesBase string

	httpClient *http.Client
}

// NewClient creates a new HighLevel client from the injected configuration
func NewClient(cfg *config.Config) Client {
	return &clientImpl{
		apiKey:       cfg.HighLevelAPIKey,
		locationID:   cfg.HighLevelLocationID,
		restBase:     strings.TrimRight(cfg.HighLevelRestBase, "/"),
		servicesBase: strings.TrimRight(cfg.HighLevelAPIBase, "/"),
		httpClient:   &http.Client{},
	}
}

// requestOptions carries the optional parts of a CRM call.
type requestOptions struct {
	headers map[string]string
	payload interface{}
}

func (c *clientImpl) restRequest(method, endpoint string, opts *requestOptions) ([]byte, error) {
	return c.request(c.restBase, method, endpoint, opts)
}

func (c *clientImpl) servicesRequest(method, endpoint string, opts *requestOptions) ([]byte, error) {
	return c.request(c.servicesBase, method, endpoint, opts)
}

// request performs one authenticated call against the given base and returns
// a normalized JSON document. Success responses without a body become
// {"success":true}; non-JSON acknowledgements (some delete endpoints answer
// with plain "OK") become {"success":true,"message":...,"raw":...}.
func (c *clientImpl) request(base, method, endpoint string, opts *requestOptions) ([]byte, error) {
	if c.apiKey == "" {
		return nil, &ConfigError{Message: "HIGHLEVEL_API_KEY is not set"}
	}
	if opts == nil {
		opts = &requestOptions{}
	}

	var bodyReader io.Reader
	if opts.payload != nil {
		jsonPayload, err := json.Marshal(opts.payload)
		if err != nil {
			return nil, &ConfigError{Message: "cannot encode request payload: " + err.Error()}
		}
		bodyReader = bytes.NewBuffer(jsonPayload)
	}

	req, err := http.NewRequest(method, base+endpoint, bodyReader)
	if err != nil {
		return nil, &APIError{Message: "error creating request: " + err.Error()}
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Version", apiVersion)
	req.Header.Set("Accept", "application/json")
	if opts.payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"method":   method,
			"endpoint": endpoint,
		}).WithError(err).Error("HighLevel request failed")
		return nil, &APIError{Message: "request failed: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: "error reading response: " + err.Error()}
	}

	fields := logrus.Fields{
		"method":   method,
		"endpoint": endpoint,
		"status":   resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := upstreamMessage(body)
		logger.WithFields(fields).Warnf("HighLevel call failed: %s", msg)
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, &AuthError{Message: msg}
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	logger.WithFields(fields).Debug("HighLevel call succeeded")

	if len(bytes.TrimSpace(body)) == 0 {
		return []byte(`{"success":true}`), nil
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return body, nil
	}

	raw := strings.TrimSpace(string(body))
	normalized, err := json.Marshal(map[string]interface{}{
		"success": true,
		"message": raw,
		"raw":     raw,
	})
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: "error normalizing response: " + err.Error()}
	}
	return normalized, nil
}

// upstreamMessage extracts a human-readable message from an error response
// body, falling back to the raw text when it is not JSON.
func upstreamMessage(body []byte) string {
	var decoded struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil {
		switch {
		case decoded.Message != "":
			return decoded.Message
		case decoded.Msg != "":
			return decoded.Msg
		case decoded.Error != "":
			return decoded.Error
		}
	}
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return "upstream returned no error detail"
	}
	return raw
}
