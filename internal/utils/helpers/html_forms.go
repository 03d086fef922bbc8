package helpers

import (
	"fmt"
	"html"
)

// BuildOTPEmailHTML: письмо с одноразовым кодом сброса пароля.
func BuildOTPEmailHTML(name, otp string, ttlMinutes int) string {
	greeting := "Hello,"
	if name != "" {
		greeting = fmt.Sprintf("Hello %s,", html.EscapeString(name))
	}

	return fmt.Sprintf(`
<html>
  <body style="font-family:Arial,sans-serif; background:#f9f9f9;">
    <table width="100%%" cellpadding="0" cellspacing="0" bgcolor="#f9f9f9">
      <tr>
        <td align="center" style="padding:32px 0;">
          <table width="500" bgcolor="#fff" cellpadding="24" cellspacing="0" style="border-radius:8px; box-shadow:0 1px 6px #eee;">
            <tr>
              <td>
                <h2 style="color:#2d74da; margin-top:0;">Wall-Magazine Password Reset</h2>
                <p style="font-size:16px; color:#222;">%s</p>
                <p style="font-size:16px; color:#222;">Your one-time password is:</p>
                <p style="font-size:32px; letter-spacing:6px; font-weight:bold; color:#222;">%s</p>
                <p style="font-size:14px; color:#666;">The code is valid for %d minutes.</p>
                <hr style="margin:32px 0 16px 0; border:0; border-top:1px solid #eee;">
                <div style="font-size:12px; color:#999;">If you did not request a password reset, you can safely ignore this email.</div>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`, greeting, html.EscapeString(otp), ttlMinutes)
}

// BuildLoginCodeHTML: письмо с кодом второго фактора при входе.
func BuildLoginCodeHTML(otp string, ttlMinutes int) string {
	return fmt.Sprintf(`
<html>
  <body style="font-family:Arial,sans-serif; background:#f9f9f9;">
    <table width="100%%" cellpadding="0" cellspacing="0" bgcolor="#f9f9f9">
      <tr>
        <td align="center" style="padding:32px 0;">
          <table width="500" bgcolor="#fff" cellpadding="24" cellspacing="0" style="border-radius:8px; box-shadow:0 1px 6px #eee;">
            <tr>
              <td>
                <h2 style="color:#2d74da; margin-top:0;">Wall-Magazine sign-in code</h2>
                <p style="font-size:32px; letter-spacing:6px; font-weight:bold; color:#222;">%s</p>
                <p style="font-size:14px; color:#666;">Enter this code to finish signing in. It expires in %d minutes.</p>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`, html.EscapeString(otp), ttlMinutes)
}

// BuildSubmissionNoticeHTML: уведомление модератору о новой публикации.
func BuildSubmissionNoticeHTML(title, author, category, excerpt string) string {
	return fmt.Sprintf(`
<html>
  <body style="font-family:Arial,sans-serif;background:#f7f7f7;padding:0;margin:0;">
    <table width="100%%" bgcolor="#f7f7f7" cellpadding="0" cellspacing="0" style="padding:30px 0;">
      <tr>
        <td align="center">
          <table width="600" bgcolor="#fff" cellpadding="24" cellspacing="0" style="border-radius:10px;box-shadow:0 2px 8px #eee;">
            <tr>
              <td>
                <h2 style="color:#2d74da;margin-top:0;">New submission awaiting review</h2>
                <p style="font-size:16px;color:#333;"><b>%s</b> by %s (%s)</p>
                <p style="font-size:14px;color:#666;">%s</p>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`, html.EscapeString(title), html.EscapeString(author), html.EscapeString(category), html.EscapeString(excerpt))
}
