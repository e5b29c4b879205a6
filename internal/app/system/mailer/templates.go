// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// ResetEmailData holds data for password reset email templates.
type ResetEmailData struct {
	SiteName  string
	ResetLink string
	ExpiresIn string // e.g., "30 minutes"
}

// BuildResetEmail creates a password reset email with HTML and text bodies.
func BuildResetEmail(data ResetEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Reset your %s password", data.SiteName),
		TextBody: buildResetText(data),
		HTMLBody: buildLinkHTML(linkEmailData{
			SiteName: data.SiteName,
			Intro:    "We received a request to reset your password.",
			Action:   "Reset Password",
			Link:     data.ResetLink,
			Footnote: fmt.Sprintf("This link expires in %s. If you did not request a reset, you can safely ignore this email.", data.ExpiresIn),
		}),
	}
}

func buildResetText(data ResetEmailData) string {
	var buf bytes.Buffer
	buf.WriteString("We received a request to reset your password.\n\n")
	buf.WriteString("Open this link to choose a new one:\n")
	buf.WriteString(data.ResetLink + "\n\n")
	buf.WriteString(fmt.Sprintf("This link expires in %s.\n\n", data.ExpiresIn))
	buf.WriteString("If you did not request a reset, you can safely ignore this email.\n")
	return buf.String()
}

// InvitationEmailData holds data for workspace invitation email templates.
type InvitationEmailData struct {
	SiteName      string
	WorkspaceName string
	InviterName   string
	AcceptLink    string
	ExpiresIn     string
}

// BuildInvitationEmail creates a workspace invitation email.
func BuildInvitationEmail(data InvitationEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("%s invited you to %s", data.InviterName, data.WorkspaceName),
		TextBody: buildInvitationText(data),
		HTMLBody: buildLinkHTML(linkEmailData{
			SiteName: data.SiteName,
			Intro:    fmt.Sprintf("%s invited you to join the workspace %q.", data.InviterName, data.WorkspaceName),
			Action:   "Accept Invitation",
			Link:     data.AcceptLink,
			Footnote: fmt.Sprintf("This invitation expires in %s.", data.ExpiresIn),
		}),
	}
}

func buildInvitationText(data InvitationEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%s invited you to join the workspace %q on %s.\n\n", data.InviterName, data.WorkspaceName, data.SiteName))
	buf.WriteString("Open this link to respond:\n")
	buf.WriteString(data.AcceptLink + "\n\n")
	buf.WriteString(fmt.Sprintf("This invitation expires in %s.\n", data.ExpiresIn))
	return buf.String()
}

// linkEmailData drives the shared single-button HTML layout.
type linkEmailData struct {
	SiteName string
	Intro    string
	Action   string
	Link     string
	Footnote string
}

func buildLinkHTML(data linkEmailData) string {
	tmpl := template.Must(template.New("link").Parse(linkHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const linkHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.SiteName}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #0f766e;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">{{.Intro}}</p>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.Link}}" style="display: inline-block; padding: 14px 32px; background-color: #0f766e; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">{{.Action}}</a>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">{{.Footnote}}</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
