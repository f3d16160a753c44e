package highlevel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sendahug/hug-api/pkg/logger"
	"github.com/sendahug/hug-api/pkg/utils"
)

// Contact is a CRM contact record keyed by email.
type Contact struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"contactName"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     string   `json:"phone"`
	Tags      []string `json:"tags"`
}

// ContactData holds the optional fields for creating a contact. Zero-valued
// fields are omitted from the request rather than sent as nulls.
type ContactData struct {
	Email     string
	Name      string
	FirstName string
	LastName  string
	Phone     string
	Tags      []string
}

func (d ContactData) payload() map[string]interface{} {
	payload := map[string]interface{}{}
	if d.Email != "" {
		payload["email"] = utils.NormalizeEmail(d.Email)
	}
	if d.Name != "" {
		payload["name"] = d.Name
	}
	if d.FirstName != "" {
		payload["firstName"] = d.FirstName
	}
	if d.LastName != "" {
		payload["lastName"] = d.LastName
	}
	if d.Phone != "" {
		payload["phone"] = d.Phone
	}
	if len(d.Tags) > 0 {
		payload["tags"] = d.Tags
	}
	return payload
}

// decodeContacts normalizes the three response shapes the contact endpoints
// use: a bare array, {"contact": {...}} and {"contacts": [...]}.
func decodeContacts(body []byte) ([]Contact, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Contact
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("error parsing contact list: %w", err)
		}
		return list, nil
	}

	var wrapped struct {
		Contact  *Contact  `json:"contact"`
		Contacts []Contact `json:"contacts"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("error parsing contact response: %w", err)
	}
	if wrapped.Contact != nil {
		return []Contact{*wrapped.Contact}, nil
	}
	return wrapped.Contacts, nil
}

// SearchContactByEmail looks a contact up by email. The upstream search is
// fuzzy, so results are filtered for an exact case-insensitive match; a miss
// returns (nil, nil), never an error.
func (c *clientImpl) SearchContactByEmail(email string) (*Contact, error) {
	email = utils.NormalizeEmail(email)

	body, err := c.restRequest(http.MethodGet, "/contacts/?query="+url.QueryEscape(email), nil)
	if err != nil {
		return nil, fmt.Errorf("error searching for contact: %w", err)
	}

	contacts, err := decodeContacts(body)
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		if utils.NormalizeEmail(contacts[i].Email) == email {
			return &contacts[i], nil
		}
	}
	return nil, nil
}

// CreateContact creates a contact from the provided fields
func (c *clientImpl) CreateContact(data ContactData) (*Contact, error) {
	body, err := c.restRequest(http.MethodPost, "/contacts/", &requestOptions{payload: data.payload()})
	if err != nil {
		return nil, fmt.Errorf("error creating contact: %w", err)
	}

	contacts, err := decodeContacts(body)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, &APIError{Message: "contact create returned no contact"}
	}
	return &contacts[0], nil
}

// FindOrCreateContact returns the existing contact for the email or creates
// one with the supplied defaults. This is the entry point every write path
// uses to obtain a contact id. Two concurrent callers can still both miss
// the search and create duplicates; the CRM offers no upsert to close that
// window.
func (c *clientImpl) FindOrCreateContact(email string, data ContactData) (*Contact, error) {
	contact, err := c.SearchContactByEmail(email)
	if err != nil {
		return nil, err
	}
	if contact != nil {
		return contact, nil
	}

	data.Email = email
	return c.CreateContact(data)
}

// GetCustomFieldDefinitions fetches all custom field definitions and maps
// each field key (with any "contact." prefix stripped) to its internal id.
// Definitions are fetched fresh on every update; nothing is cached.
func (c *clientImpl) GetCustomFieldDefinitions() (map[string]string, error) {
	body, err := c.restRequest(http.MethodGet, "/custom-fields/", nil)
	if err != nil {
		return nil, fmt.Errorf("error fetching custom field definitions: %w", err)
	}

	var response struct {
		CustomFields []struct {
			ID       string `json:"id"`
			FieldKey string `json:"fieldKey"`
			Name     string `json:"name"`
		} `json:"customFields"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error parsing custom field definitions: %w", err)
	}

	definitions := make(map[string]string, len(response.CustomFields))
	for _, field := range response.CustomFields {
		key := field.FieldKey
		if key == "" {
			key = field.Name
		}
		key = strings.TrimPrefix(key, "contact.")
		if key != "" {
			definitions[key] = field.ID
		}
	}
	return definitions, nil
}

// UpdateContactCustomFields writes the given key→value updates to a contact.
// Keys with no matching definition are dropped with a warning; when nothing
// resolves the call returns without a write. Values are sent as strings
// because the CRM's custom-field API only accepts strings.
func (c *clientImpl) UpdateContactCustomFields(contactID string, updates map[string]interface{}) (*Contact, error) {
	definitions, err := c.GetCustomFieldDefinitions()
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]string, len(updates))
	for key, value := range updates {
		id, ok := definitions[key]
		if !ok {
			logger.Warnf("No custom field definition for %q, dropping update", key)
			continue
		}
		resolved[id] = fmt.Sprintf("%v", value)
	}
	if len(resolved) == 0 {
		logger.Warnf("No custom field updates resolved for contact %s, skipping write", contactID)
		return nil, nil
	}

	body, err := c.restRequest(http.MethodPut, "/contacts/"+contactID, &requestOptions{
		payload: map[string]interface{}{"customField": resolved},
	})
	if err != nil {
		return nil, fmt.Errorf("error updating custom fields: %w", err)
	}

	contacts, err := decodeContacts(body)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	return &contacts[0], nil
}

// AddTagsToContact unions the given tags into the contact's current tag set
// and writes the full list back. This is a read-modify-write without a
// concurrency check; concurrent taggers can lose each other's updates.
func (c *clientImpl) AddTagsToContact(contactID string, tags ...string) ([]string, error) {
	body, err := c.restRequest(http.MethodGet, "/contacts/"+contactID, nil)
	if err != nil {
		return nil, fmt.Errorf("error fetching contact for tagging: %w", err)
	}

	contacts, err := decodeContacts(body)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, &APIError{Message: "contact " + contactID + " not found for tagging"}
	}

	seen := make(map[string]bool)
	merged := make([]string, 0, len(contacts[0].Tags)+len(tags))
	for _, tag := range append(append([]string{}, contacts[0].Tags...), tags...) {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		merged = append(merged, tag)
	}

	_, err = c.restRequest(http.MethodPut, "/contacts/"+contactID, &requestOptions{
		payload: map[string]interface{}{"tags": merged},
	})
	if err != nil {
		return nil, fmt.Errorf("error writing tags: %w", err)
	}
	return merged, nil
}

// DeleteContact deletes a contact by id
func (c *clientImpl) DeleteContact(contactID string) error {
	_, err := c.restRequest(http.MethodDelete, "/contacts/"+contactID, nil)
	if err != nil {
		return fmt.Errorf("error deleting contact: %w", err)
	}
	return nil
}

// DeleteContactByEmail deletes the first exact-match contact for the email.
// The boolean reports whether anything was deleted, so a missing contact is
// distinguishable from a failed delete.
func (c *clientImpl) DeleteContactByEmail(email string) (bool, error) {
	contact, err := c.SearchContactByEmail(email)
	if err != nil {
		return false, err
	}
	if contact == nil {
		return false, nil
	}
	if err := c.DeleteContact(contact.ID); err != nil {
		return false, err
	}
	return true, nil
}
