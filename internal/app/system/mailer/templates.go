// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"html/template"
	"strings"
)

// NotificationEmailData holds data for the notification email template.
type NotificationEmailData struct {
	SenderName string // church or sender display name shown in the header
	Subject    string
	Body       string // plain text; blank lines separate paragraphs
}

var notificationTmpl = template.Must(template.New("notification").Parse(notificationHTMLTemplate))

// BuildNotificationHTML renders the HTML alternative of a notification
// email. The body is escaped; paragraphs come from blank-line breaks.
func BuildNotificationHTML(data NotificationEmailData) (string, error) {
	var view = struct {
		SenderName string
		Subject    string
		Paragraphs []string
	}{SenderName: data.SenderName, Subject: data.Subject}

	for _, p := range strings.Split(strings.ReplaceAll(data.Body, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			view.Paragraphs = append(view.Paragraphs, p)
		}
	}

	var buf bytes.Buffer
	if err := notificationTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const notificationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Subject}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 560px; background-color: #ffffff; border-radius: 8px;">
          {{- if .SenderName}}
          <tr>
            <td style="padding: 24px 32px; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 20px; font-weight: 600; color: #7c2d12;">{{.SenderName}}</h1>
            </td>
          </tr>
          {{- end}}
          <tr>
            <td style="padding: 32px;">
              <h2 style="margin: 0 0 16px; font-size: 18px; color: #1f2937;">{{.Subject}}</h2>
              {{- range .Paragraphs}}
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151; line-height: 1.5; white-space: pre-line;">{{.}}</p>
              {{- end}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
