package telegram

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wrdo/mailrouter/dto"
	"github.com/wrdo/mailrouter/internal/utils"
)

const (
	// sendMessage accepts 4096 characters; the rest is headers.
	maxContentLength = 3800

	noSubject = "No Subject"
	noContent = "No Content"
	noDate    = "--"

	dateLayout = "2006-01-02 15:04:05"
)

var (
	tagPattern = regexp.MustCompile(`<[^>]*>`)

	inboundDateLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
		"2 Jan 2006 15:04:05 -0700",
		dateLayout,
	}
)

// FormatMessage renders the chat text. A configured template gets its placeholders replaced
// once each; otherwise the default Markdown card is built.
func FormatMessage(email *dto.InboundEmail, template string) string {
	fromInfo := email.SenderDisplay()
	date := formatDate(email.Date)

	if template != "" {
		message := template
		message = utils.ReplaceFirst(message, "{{from}}", fromInfo)
		message = utils.ReplaceFirst(message, "{{to}}", email.To)
		message = utils.ReplaceFirst(message, "{{subject}}", utils.FirstNonEmpty(email.Subject, noSubject))
		message = utils.ReplaceFirst(message, "{{text}}", utils.FirstNonEmpty(email.HTML, email.Text, noContent))
		message = utils.ReplaceFirst(message, "{{date}}", date)
		return message
	}

	content := utils.FirstNonEmpty(email.Text, StripHTML(email.HTML), noContent)
	content = utils.TruncateRunes(content, maxContentLength, "...")

	var sb strings.Builder
	sb.WriteString("📮 *New Email*\n\n")
	sb.WriteString("*From:* `" + fromInfo + "`\n")
	sb.WriteString("*To:* `" + email.To + "`\n")
	sb.WriteString("*Subject:* " + utils.FirstNonEmpty(email.Subject, noSubject) + "\n")
	sb.WriteString("*Date:* " + date + "\n")
	sb.WriteString("*Content:* \n" + content)
	return sb.String()
}

// StripHTML returns the text content of an HTML fragment.
func StripHTML(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return tagPattern.ReplaceAllString(html, "")
	}
	return strings.TrimSpace(doc.Text())
}

func formatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return noDate
	}
	for _, layout := range inboundDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(dateLayout)
		}
	}
	return raw
}
