package email

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"sort"
	"strings"
)

type Sender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	BaseURL  string

	logger *slog.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSender(host, port, username, password, from, baseURL string, logger *slog.Logger) *Sender {
	return &Sender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
		send:     smtp.SendMail,
	}
}

const layout = `
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 5px; }
        .header { background-color: #1f6f5c; color: white; padding: 10px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { padding: 20px; }
        .button { display: inline-block; padding: 10px 20px; background-color: #f2c14e; color: black; text-decoration: none; border-radius: 4px; font-weight: bold; }
        .footer { margin-top: 20px; font-size: 0.8em; color: #777; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>{{.Title}}</h1></div>
        <div class="content">
            <p>Hi {{.Username}},</p>
            {{template "body" .}}
        </div>
        <div class="footer"><p>Gbairai</p></div>
    </div>
</body>
</html>
`

const verificationBody = `{{define "body"}}
            <p>Please verify your email address to start messaging.</p>
            <p style="text-align: center;"><a href="{{.Link}}" class="button">Verify Email</a></p>
            <p>If you didn't create an account, you can safely ignore this email.</p>
{{end}}`

const messageBody = `{{define "body"}}
            <p>{{.Sender}} sent you a new message.</p>
            <p style="text-align: center;"><a href="{{.Link}}" class="button">Open Gbairai</a></p>
{{end}}`

var (
	verificationTmpl = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(verificationBody))
	messageTmpl      = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(messageBody))
)

type mailData struct {
	Title    string
	Username string
	Sender   string
	Link     string
}

func (s *Sender) SendVerificationEmail(to, username, token string) error {
	data := mailData{
		Title:    "Welcome to Gbairai!",
		Username: username,
		Link:     s.BaseURL + "/verify?token=" + token,
	}
	return s.deliver(to, "Verify your Gbairai email", verificationTmpl, data)
}

func (s *Sender) SendMessageNotification(to, username, senderName string) error {
	data := mailData{
		Title:    "New message",
		Username: username,
		Sender:   senderName,
		Link:     s.BaseURL + "/",
	}
	return s.deliver(to, senderName+" sent you a message", messageTmpl, data)
}

func (s *Sender) deliver(to, subject string, t *template.Template, data mailData) error {
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	headers := map[string]string{
		"From":         s.From,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=\"UTF-8\"",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msg strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&msg, "%s: %s\r\n", k, headers[k])
	}
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	// Without an SMTP host the mail is only logged.
	if s.Host == "" {
		s.logger.Info("email not sent, smtp host unset", "to", to, "subject", subject)
		return nil
	}

	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	return s.send(s.Host+":"+s.Port, auth, s.From, []string{to}, []byte(msg.String()))
}
