package services

import (
	"fmt"
	"time"

	"github.com/sendahug/hug-api/pkg/clients/highlevel"
	"github.com/sendahug/hug-api/pkg/config"
	"github.com/sendahug/hug-api/pkg/logger"
	"github.com/sendahug/hug-api/pkg/models"
	"github.com/sendahug/hug-api/pkg/utils"
)

const (
	tagHugRecipient  = "hug-recipient"
	tagDailySub      = "daily-hug-subscriber"
	fieldHugMessage  = "hug_message"
	fieldHugSender   = "hug_sender_name"
	fieldSenderEmail = "hug_sender_email"
	fieldLastHugAt   = "last_hug_at"
	fieldAnonymous   = "hug_anonymous"
)

// HugSubmissionService defines the interface for syncing validated hug
// submissions into the CRM
type HugSubmissionService interface {
	ProcessHugSubmission(data models.HugSubmission) error
}

type hugSubmissionServiceImpl struct {
	crmClient highlevel.Client
	config    *config.Config
}

// NewHugSubmissionService creates a new submission service
func NewHugSubmissionService(crmClient highlevel.Client, config *config.Config) HugSubmissionService {
	return &hugSubmissionServiceImpl{
		crmClient: crmClient,
		config:    config,
	}
}

// ProcessHugSubmission syncs one submission: find-or-create the recipient
// contact, write the hug custom fields, apply tags and send the notification
// template when one is configured. Each step is a sequential CRM round-trip;
// the first failure aborts the rest.
func (s *hugSubmissionServiceImpl) ProcessHugSubmission(data models.HugSubmission) error {
	email := utils.NormalizeEmail(data.RecipientEmail)

	logger.Infof("Processing hug submission for %s", email)

	contact, err := s.crmClient.FindOrCreateContact(email, highlevel.ContactData{
		Name: data.RecipientName,
	})
	if err != nil {
		return fmt.Errorf("error resolving recipient contact: %w", err)
	}

	updates := map[string]interface{}{
		fieldHugMessage: data.Message,
		fieldLastHugAt:  data.SubmittedAt().Format(time.RFC3339),
		fieldAnonymous:  data.SendAnonymously.Bool(),
	}
	if !data.SendAnonymously.Bool() {
		if data.SenderName != "" {
			updates[fieldHugSender] = data.SenderName
		}
		if data.SenderEmail != "" {
			updates[fieldSenderEmail] = utils.NormalizeEmail(data.SenderEmail)
		}
	}
	if _, err := s.crmClient.UpdateContactCustomFields(contact.ID, updates); err != nil {
		return fmt.Errorf("error writing hug fields: %w", err)
	}

	tags := []string{tagHugRecipient}
	if data.SubscribeDailyHug.Bool() {
		tags = append(tags, tagDailySub)
	}
	if _, err := s.crmClient.AddTagsToContact(contact.ID, tags...); err != nil {
		return fmt.Errorf("error tagging contact: %w", err)
	}

	if s.config.HugTemplateID != "" {
		if err := s.crmClient.SendEmailTemplate(contact.ID, s.config.HugTemplateID); err != nil {
			return fmt.Errorf("error sending hug notification: %w", err)
		}
	}

	logger.Infof("Synced hug submission for %s (contact %s)", email, contact.ID)
	return nil
}
