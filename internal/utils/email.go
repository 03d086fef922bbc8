package utils

import (
	"encoding/base64"
	"mime"
	"net/mail"
	"strings"
)

// переводы строк в заголовках недопустимы
var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

// BuildHTMLMessage собирает письмо (заголовки + HTML тело) для отправки по SMTP.
func BuildHTMLMessage(fromName, fromAddr, to, subject, htmlBody string) []byte {
	from := (&mail.Address{Name: fromName, Address: fromAddr}).String()
	to = headerSafe.Replace(to)
	subject = headerSafe.Replace(subject)

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(htmlBody))
	for len(encoded) > 76 {
		b.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded + "\r\n")

	return []byte(b.String())
}
