package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sendahug/hug-api/pkg/clients/highlevel"
	"github.com/sendahug/hug-api/pkg/config"
	"github.com/sendahug/hug-api/pkg/models"
)

// fakeCRM records the calls the submission workflow makes.
type fakeCRM struct {
	contact       *highlevel.Contact
	updates       map[string]interface{}
	updatedID     string
	tags          []string
	sentTemplates []string

	searchErr error
	updateErr error
	tagErr    error
	sendErr   error
}

func (f *fakeCRM) SearchContactByEmail(email string) (*highlevel.Contact, error) {
	return f.contact, f.searchErr
}

func (f *fakeCRM) CreateContact(data highlevel.ContactData) (*highlevel.Contact, error) {
	f.contact = &highlevel.Contact{ID: "created-1", Email: data.Email, Name: data.Name}
	return f.contact, nil
}

func (f *fakeCRM) FindOrCreateContact(email string, data highlevel.ContactData) (*highlevel.Contact, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.contact != nil {
		return f.contact, nil
	}
	return f.CreateContact(highlevel.ContactData{Email: email, Name: data.Name})
}

func (f *fakeCRM) GetCustomFieldDefinitions() (map[string]string, error) {
	return nil, nil
}

func (f *fakeCRM) UpdateContactCustomFields(contactID string, updates map[string]interface{}) (*highlevel.Contact, error) {
	f.updatedID = contactID
	f.updates = updates
	return f.contact, f.updateErr
}

func (f *fakeCRM) AddTagsToContact(contactID string, tags ...string) ([]string, error) {
	f.tags = append(f.tags, tags...)
	return f.tags, f.tagErr
}

func (f *fakeCRM) DeleteContact(contactID string) error {
	return nil
}

func (f *fakeCRM) DeleteContactByEmail(email string) (bool, error) {
	return false, nil
}

func (f *fakeCRM) SendEmailTemplate(contactID, templateID string) error {
	f.sentTemplates = append(f.sentTemplates, templateID)
	return f.sendErr
}

func (f *fakeCRM) SendEmailTemplateByEmail(email, templateID string) error {
	return f.SendEmailTemplate("", templateID)
}

func baseSubmission() models.HugSubmission {
	return models.HugSubmission{
		RecipientName:  "Ada",
		RecipientEmail: "Ada@Example.COM",
		Message:        "Sending you a hug!",
		SenderName:     "Grace",
		SenderEmail:    "grace@example.com",
	}
}

func TestProcessHugSubmissionFullFlow(t *testing.T) {
	crm := &fakeCRM{contact: &highlevel.Contact{ID: "42", Email: "ada@example.com"}}
	svc := NewHugSubmissionService(crm, &config.Config{HugTemplateID: "tpl-hug"})

	data := baseSubmission()
	data.SubscribeDailyHug = true

	require.NoError(t, svc.ProcessHugSubmission(data))

	assert.Equal(t, "42", crm.updatedID)
	assert.Equal(t, "Sending you a hug!", crm.updates[fieldHugMessage])
	assert.Equal(t, "Grace", crm.updates[fieldHugSender])
	assert.Equal(t, "grace@example.com", crm.updates[fieldSenderEmail])
	assert.ElementsMatch(t, []string{tagHugRecipient, tagDailySub}, crm.tags)
	assert.Equal(t, []string{"tpl-hug"}, crm.sentTemplates)
}

func TestProcessHugSubmissionAnonymousOmitsSender(t *testing.T) {
	crm := &fakeCRM{contact: &highlevel.Contact{ID: "42"}}
	svc := NewHugSubmissionService(crm, &config.Config{})

	data := baseSubmission()
	data.SendAnonymously = true

	require.NoError(t, svc.ProcessHugSubmission(data))

	assert.NotContains(t, crm.updates, fieldHugSender)
	assert.NotContains(t, crm.updates, fieldSenderEmail)
	assert.Equal(t, true, crm.updates[fieldAnonymous])
}

func TestProcessHugSubmissionNoTemplateConfigured(t *testing.T) {
	crm := &fakeCRM{contact: &highlevel.Contact{ID: "42"}}
	svc := NewHugSubmissionService(crm, &config.Config{})

	require.NoError(t, svc.ProcessHugSubmission(baseSubmission()))
	assert.Empty(t, crm.sentTemplates)
	assert.Equal(t, []string{tagHugRecipient}, crm.tags)
}

func TestProcessHugSubmissionCreatesMissingContact(t *testing.T) {
	crm := &fakeCRM{}
	svc := NewHugSubmissionService(crm, &config.Config{})

	require.NoError(t, svc.ProcessHugSubmission(baseSubmission()))
	require.NotNil(t, crm.contact)
	assert.Equal(t, "ada@example.com", crm.contact.Email, "lookup email is normalized before use")
}

func TestProcessHugSubmissionPropagatesUpdateFailure(t *testing.T) {
	crm := &fakeCRM{
		contact:   &highlevel.Contact{ID: "42"},
		updateErr: errors.New("boom"),
	}
	svc := NewHugSubmissionService(crm, &config.Config{HugTemplateID: "tpl-hug"})

	err := svc.ProcessHugSubmission(baseSubmission())
	require.Error(t, err)
	assert.Empty(t, crm.sentTemplates, "later steps must not run after a failure")
}
