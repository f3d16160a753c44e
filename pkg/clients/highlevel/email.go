package highlevel

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendahug/hug-api/pkg/logger"
)

// emailCandidate is one endpoint variant for sending a templated email.
// The CRM exposes templated sends inconsistently across account types, so
// candidates are tried in priority order until one succeeds.
type emailCandidate struct {
	name    string
	enabled bool
	send    func() error
}

// SendEmailTemplate sends a templated email to a contact, trying each known
// endpoint variant in order:
//
//  1. services base with the location id passed as a header
//  2. services base without the location header
//  3. legacy REST base with the location id in the path
//
// A 404, 401, or invalid-token failure means the variant does not exist for
// this account configuration and the next candidate is tried. Any other
// failure is a request problem that would recur on every variant, so it
// aborts the chain immediately.
func (c *clientImpl) SendEmailTemplate(contactID, templateID string) error {
	payload := map[string]interface{}{
		"type":       "Email",
		"contactId":  contactID,
		"templateId": templateID,
	}

	candidates := []emailCandidate{
		{
			name:    "services base with LocationId header",
			enabled: c.locationID != "",
			send: func() error {
				_, err := c.servicesRequest(http.MethodPost, "/conversations/messages", &requestOptions{
					headers: map[string]string{"LocationId": c.locationID},
					payload: payload,
				})
				return err
			},
		},
		{
			name:    "services base",
			enabled: true,
			send: func() error {
				_, err := c.servicesRequest(http.MethodPost, "/conversations/messages", &requestOptions{
					payload: payload,
				})
				return err
			},
		},
		{
			name:    "legacy REST base with location path",
			enabled: c.locationID != "",
			send: func() error {
				_, err := c.restRequest(http.MethodPost, "/locations/"+c.locationID+"/emails", &requestOptions{
					payload: payload,
				})
				return err
			},
		},
	}

	var lastErr error
	for _, candidate := range candidates {
		if !candidate.enabled {
			continue
		}
		err := candidate.send()
		if err == nil {
			logger.Infof("Sent email template %s to contact %s via %s", templateID, contactID, candidate.name)
			return nil
		}
		if !isEndpointMismatch(err) {
			return fmt.Errorf("error sending email template: %w", err)
		}
		logger.Warnf("Email endpoint variant %q rejected the send, trying next: %v", candidate.name, err)
		lastErr = err
	}

	return fmt.Errorf("all email endpoints rejected template %s; verify the template id and that the API key is a location-level key: %w", templateID, lastErr)
}

// SendEmailTemplateByEmail resolves the email to a contact id and sends the
// template to it.
func (c *clientImpl) SendEmailTemplateByEmail(email, templateID string) error {
	contact, err := c.SearchContactByEmail(email)
	if err != nil {
		return err
	}
	if contact == nil {
		return fmt.Errorf("%w: %s", ErrContactNotFound, email)
	}
	return c.SendEmailTemplate(contact.ID, templateID)
}

// isEndpointMismatch reports whether a send failure indicates the wrong
// endpoint variant for this account rather than a bad request.
func isEndpointMismatch(err error) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusUnauthorized {
			return true
		}
		msg := strings.ToLower(apiErr.Message)
		return strings.Contains(msg, "not found") || strings.Contains(msg, "invalid token") || strings.Contains(msg, "invalid jwt")
	}
	return false
}
