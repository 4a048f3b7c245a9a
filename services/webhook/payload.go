package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/internal/utils"
)

const noSubject = "No Subject"

type TemplateKind int

const (
	TemplateNone TemplateKind = iota
	TemplateString
	TemplateObject
	TemplateInvalid
)

func (k TemplateKind) String() string {
	switch k {
	case TemplateNone:
		return "none"
	case TemplateString:
		return "string"
	case TemplateObject:
		return "object"
	case TemplateInvalid:
		return "invalid"
	}
	return "unknown"
}

// Template is the parsed webhook_template setting. Exactly one of Text or Fields is set,
// depending on Kind; Err is set for TemplateInvalid.
type Template struct {
	Kind   TemplateKind
	Text   string
	Fields map[string]interface{}
	Err    error
}

// ParseTemplate classifies the raw setting. A JSON string is a message format, a JSON object
// overrides payload fields, anything else is invalid.
func ParseTemplate(raw string) Template {
	if strings.TrimSpace(raw) == "" {
		return Template{Kind: TemplateNone}
	}

	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return Template{Kind: TemplateInvalid, Err: errors.Wrap(err, "parse webhook template")}
	}

	switch v := value.(type) {
	case string:
		return Template{Kind: TemplateString, Text: v}
	case map[string]interface{}:
		return Template{Kind: TemplateObject, Fields: v}
	}
	return Template{Kind: TemplateInvalid, Err: errors.Errorf("webhook template must be a JSON string or object, got %T", value)}
}

// DefaultPayload is the body sent when no usable template is configured.
func DefaultPayload(email *dto.InboundEmail) map[string]interface{} {
	attachments := email.Attachments
	if attachments == nil {
		attachments = []dto.Attachment{}
	}
	return map[string]interface{}{
		"from":        email.From,
		"fromName":    email.FromName,
		"fromInfo":    email.SenderDisplay(),
		"to":          email.To,
		"subject":     utils.FirstNonEmpty(email.Subject, noSubject),
		"text":        email.Text,
		"html":        email.HTML,
		"date":        email.Date,
		"messageId":   email.MessageId,
		"replyTo":     email.ReplyTo,
		"cc":          stringOrEmptyList(email.Cc),
		"headers":     stringOrEmptyList(email.Headers),
		"attachments": attachments,
	}
}

// BuildPayload applies the template to the default payload. For string templates the default
// fields win over "message"; for object templates the template fields win.
func BuildPayload(email *dto.InboundEmail, tpl Template) map[string]interface{} {
	payload := DefaultPayload(email)

	switch tpl.Kind {
	case TemplateString:
		payload["message"] = renderMessage(email, tpl.Text)
	case TemplateObject:
		for key, value := range tpl.Fields {
			payload[key] = value
		}
	}
	return payload
}

func renderMessage(email *dto.InboundEmail, format string) string {
	message := format
	message = utils.ReplaceFirst(message, "{{from}}", email.From)
	message = utils.ReplaceFirst(message, "{{fromName}}", email.FromName)
	message = utils.ReplaceFirst(message, "{{fromInfo}}", email.SenderDisplay())
	message = utils.ReplaceFirst(message, "{{to}}", email.To)
	message = utils.ReplaceFirst(message, "{{subject}}", utils.FirstNonEmpty(email.Subject, noSubject))
	message = utils.ReplaceFirst(message, "{{text}}", email.Text)
	message = utils.ReplaceFirst(message, "{{html}}", email.HTML)
	message = utils.ReplaceFirst(message, "{{date}}", email.Date)
	return message
}

// EncodePayload serializes without HTML escaping so the receiver sees the markup verbatim.
// Keys are emitted in sorted order, which keeps the signature stable.
func EncodePayload(payload map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		return nil, errors.Wrap(err, "encode webhook payload")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ParseHeaders reads the webhook_headers setting, a JSON object of header names to values.
// Non-string values are stringified.
func ParseHeaders(raw string) (map[string]string, error) {
	headers := map[string]string{}
	if strings.TrimSpace(raw) == "" {
		return headers, nil
	}

	var values map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return headers, errors.Wrap(err, "parse webhook headers")
	}
	for name, value := range values {
		switch v := value.(type) {
		case string:
			headers[name] = v
		case nil:
		default:
			headers[name] = fmt.Sprint(v)
		}
	}
	return headers, nil
}

// Sign returns the hex HMAC-SHA256 of body keyed with secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func stringOrEmptyList(s string) interface{} {
	if s == "" {
		return []string{}
	}
	return s
}
