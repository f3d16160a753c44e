package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sendahug/hug-api/pkg/clients/highlevel"
	"github.com/sendahug/hug-api/pkg/config"
	"github.com/sendahug/hug-api/pkg/logger"
	"github.com/sendahug/hug-api/pkg/models"
	"github.com/sendahug/hug-api/pkg/services"
	"github.com/sendahug/hug-api/pkg/utils"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	submissionService services.HugSubmissionService
	crmClient         highlevel.Client
	config            *config.Config
}

// NewHandlers creates a new Handlers instance
func NewHandlers(submissionService services.HugSubmissionService, crmClient highlevel.Client, config *config.Config) *Handlers {
	return &Handlers{
		submissionService: submissionService,
		crmClient:         crmClient,
		config:            config,
	}
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// HandleHugSubmission processes incoming hug form submissions and webhooks.
// Validation failures are the caller's problem; a CRM sync failure after
// validation passes is logged as a warning and the response still reports
// success so a flaky CRM never blocks the user-visible flow.
func (h *Handlers) HandleHugSubmission(c *gin.Context) {
	submission, err := h.parseSubmission(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if msg := validateSubmission(submission); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if err := h.submissionService.ProcessHugSubmission(*submission); err != nil {
		logger.WithError(err).Warnf("CRM sync failed for %s", submission.RecipientEmail)
		response := gin.H{
			"status":  "success",
			"message": "Hug received",
			"warning": "CRM sync did not complete",
		}
		if h.config.IsDevelopment() {
			response["detail"] = err.Error()
		}
		c.JSON(http.StatusOK, response)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Hug received",
	})
}

// HandleDeleteContact deletes the contact matching the given email. A miss
// is not an error: the response reports deleted=false.
func (h *Handlers) HandleDeleteContact(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		var payload struct {
			Email string `json:"email"`
		}
		if err := c.ShouldBindJSON(&payload); err == nil {
			email = payload.Email
		}
	}
	if !utils.IsValidEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}

	deleted, err := h.crmClient.DeleteContactByEmail(email)
	if err != nil {
		h.crmError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"deleted": deleted,
	})
}

// HandleSendTemplate sends a templated email to the contact for an email
// address.
func (h *Handlers) HandleSendTemplate(c *gin.Context) {
	var payload struct {
		Email      string `json:"email"`
		TemplateID string `json:"templateId"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}
	if !utils.IsValidEmail(payload.Email) || payload.TemplateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email and templateId are required"})
		return
	}

	if err := h.crmClient.SendEmailTemplateByEmail(payload.Email, payload.TemplateID); err != nil {
		if errors.Is(err, highlevel.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No contact found for that email"})
			return
		}
		h.crmError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Template email sent",
	})
}

// parseSubmission accepts both form posts and JSON webhook bodies.
func (h *Handlers) parseSubmission(c *gin.Context) (*models.HugSubmission, error) {
	contentType := c.ContentType()
	if contentType == "application/x-www-form-urlencoded" || contentType == "multipart/form-data" {
		return &models.HugSubmission{
			RecipientName:     strings.TrimSpace(c.PostForm("recipientName")),
			RecipientEmail:    strings.TrimSpace(c.PostForm("recipientEmail")),
			Message:           strings.TrimSpace(c.PostForm("message")),
			SenderName:        strings.TrimSpace(c.PostForm("senderName")),
			SenderEmail:       strings.TrimSpace(c.PostForm("senderEmail")),
			SendAnonymously:   models.FlexBool(models.ParseBoolish(c.PostForm("sendAnonymously"))),
			SubscribeDailyHug: models.FlexBool(models.ParseBoolish(c.PostForm("subscribeDailyHug"))),
			Timestamp:         strings.TrimSpace(c.PostForm("timestamp")),
		}, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, errors.New("Error reading request")
	}
	logger.WithField("body", string(body)).Debug("Received submission body")

	var submission models.HugSubmission
	if err := json.Unmarshal(body, &submission); err != nil {
		return nil, errors.New("Invalid JSON format")
	}
	return &submission, nil
}

func validateSubmission(s *models.HugSubmission) string {
	if s.RecipientName == "" || s.RecipientEmail == "" || s.Message == "" {
		return "Missing required fields"
	}
	if !utils.IsValidEmail(s.RecipientEmail) {
		return "Invalid recipient email"
	}
	if s.SenderEmail != "" && !utils.IsValidEmail(s.SenderEmail) {
		return "Invalid sender email"
	}
	return ""
}

// crmError translates client errors into HTTP responses. Upstream detail is
// only exposed in development mode.
func (h *Handlers) crmError(c *gin.Context, err error) {
	var authErr *highlevel.AuthError
	var cfgErr *highlevel.ConfigError

	message := "CRM request failed"
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &cfgErr):
		message = "CRM credentials are not configured"
	case errors.As(err, &authErr):
		message = "CRM rejected the configured credentials"
	}

	logger.WithError(err).Error("CRM call failed")

	response := gin.H{"error": message}
	if h.config.IsDevelopment() {
		response["detail"] = err.Error()
	}
	c.JSON(status, response)
}
