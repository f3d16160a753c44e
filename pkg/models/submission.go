package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// HugSubmission represents the data structure coming from the hug form.
// Boolean flags arrive either as real booleans (JSON clients) or as strings
// like "true"/"on" (form posts and some webhook senders), so they use FlexBool.
type HugSubmission struct {
	RecipientName     string   `json:"recipientName" form:"recipientName"`
	RecipientEmail    string   `json:"recipientEmail" form:"recipientEmail"`
	Message           string   `json:"message" form:"message"`
	SenderName        string   `json:"senderName" form:"senderName"`
	SenderEmail       string   `json:"senderEmail" form:"senderEmail"`
	SendAnonymously   FlexBool `json:"sendAnonymously" form:"sendAnonymously"`
	SubscribeDailyHug FlexBool `json:"subscribeDailyHug" form:"subscribeDailyHug"`
	Timestamp         string   `json:"timestamp" form:"timestamp"`
}

// SubmittedAt returns the submission timestamp, defaulting to now when the
// form did not send one or sent something unparseable.
func (s *HugSubmission) SubmittedAt() time.Time {
	if s.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, s.Timestamp); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

// FlexBool is a bool that unmarshals from JSON booleans, numbers and the
// usual truthy strings.
type FlexBool bool

// UnmarshalJSON accepts true/false, "true"/"false", "1"/"0", "on"/"off"
// and numbers.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*b = false
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = FlexBool(ParseBoolish(s))
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = FlexBool(t)
	case float64:
		*b = t != 0
	default:
		*b = false
	}
	return nil
}

// UnmarshalText lets gin's form binding populate FlexBool fields.
func (b *FlexBool) UnmarshalText(text []byte) error {
	*b = FlexBool(ParseBoolish(string(text)))
	return nil
}

// Bool returns the underlying bool
func (b FlexBool) Bool() bool {
	return bool(b)
}

// ParseBoolish interprets the string representations browsers and webhook
// providers send for checkbox-like fields.
func ParseBoolish(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "true", "on", "yes", "y":
		return true
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0
	}
	return false
}
