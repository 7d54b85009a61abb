package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/sendai-ikuei-track/site-server/internal/model"
	"github.com/sendai-ikuei-track/site-server/internal/sanitize"
)

const subjectPrefix = "[お問い合わせ] "

var jst = time.FixedZone("JST", 9*60*60)

var htmlBody = htmltemplate.Must(htmltemplate.New("inquiry.html").Funcs(htmltemplate.FuncMap{
	"lines": splitLines,
}).Parse(`<h2>新しいお問い合わせ</h2>
<p><strong>お名前:</strong> {{.Name}}</p>
<p><strong>メールアドレス:</strong> {{.Email}}</p>
<p><strong>カテゴリー:</strong> {{.Category}}</p>
<p><strong>メッセージ:</strong></p>
<p>{{range $i, $line := lines .Message}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
<p><em>受付日時: {{.ReceivedAt}}</em></p>
`))

var textBody = texttemplate.Must(texttemplate.New("inquiry.txt").Parse(`新しいお問い合わせ

お名前: {{.Name}}
メールアドレス: {{.Email}}
カテゴリー: {{.Category}}

メッセージ:
{{.Message}}

受付日時: {{.ReceivedAt}}
`))

type templateData struct {
	Name       string
	Email      string
	Category   string
	Message    string
	ReceivedAt string
}

func newTemplateData(inquiry *model.Inquiry) templateData {
	return templateData{
		Name:       inquiry.Name,
		Email:      inquiry.Email,
		Category:   inquiry.Category,
		Message:    inquiry.Message,
		ReceivedAt: inquiry.ReceivedAt.In(jst).Format("2006-01-02 15:04:05 MST"),
	}
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// Subject returns the subject line of the notification for inquiry.
func Subject(inquiry *model.Inquiry) string {
	return subjectPrefix + inquiry.Category
}

// RenderHTML renders the HTML notification. Fields are escaped by the
// template and the result is passed through the mail allow-list.
func RenderHTML(inquiry *model.Inquiry) (string, error) {
	var buf bytes.Buffer
	if err := htmlBody.Execute(&buf, newTemplateData(inquiry)); err != nil {
		return "", fmt.Errorf("render html body: %w", err)
	}
	return sanitize.HTML(buf.String()), nil
}

func RenderText(inquiry *model.Inquiry) (string, error) {
	var buf bytes.Buffer
	if err := textBody.Execute(&buf, newTemplateData(inquiry)); err != nil {
		return "", fmt.Errorf("render text body: %w", err)
	}
	return buf.String(), nil
}
