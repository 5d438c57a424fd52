package projection

import (
	"html/template"
	"io"
)

const TemplateClassic = "classic"

// Последние сегменты адресов действий клиента.
const (
	ActionSign   = "sign"
	ActionAccept = "accept"
	ActionReject = "reject"
)

// ClassicTemplate рисует HTML-страницу для клиента. Разметка из описания работ
// экранируется и выводится как текст.
type ClassicTemplate struct {
	page *template.Template
}

func NewClassicTemplate() *ClassicTemplate {
	return &ClassicTemplate{page: template.Must(template.New("classic").Parse(classicPage))}
}

func (t *ClassicTemplate) Name() string {
	return TemplateClassic
}

func (t *ClassicTemplate) ContentType() string {
	return "text/html; charset=utf-8"
}

type classicData struct {
	Proposal  ProposalView
	Doc       documentView
	Signature SignatureState
	SignURL   string
	AcceptURL string
	RejectURL string
}

func (t *ClassicTemplate) Render(w io.Writer, p Projection) error {
	return t.page.Execute(w, classicData{
		Proposal:  p.Proposal,
		Doc:       newDocumentView(p.Document),
		Signature: p.Signature,
		SignURL:   p.ActionURL(ActionSign),
		AcceptURL: p.ActionURL(ActionAccept),
		RejectURL: p.ActionURL(ActionReject),
	})
}

const classicPage = `<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<title>{{.Proposal.Title}}</title>
</head>
<body>
<article class="proposal" data-status="{{.Proposal.Status}}" data-version="{{.Proposal.CurrentVersion}}">
<h1>{{.Proposal.Title}}</h1>
{{with .Doc.ScopeOfWork}}<section id="scope"><h2>Описание работ</h2><p>{{.}}</p></section>{{end}}
{{with .Doc.Deliverables}}<section id="deliverables"><h2>Результаты</h2><ul>{{range .}}<li>{{.}}</li>{{end}}</ul></section>{{end}}
{{if or .Doc.Start .Doc.End}}<section id="timeline"><h2>Сроки</h2><p>{{.Doc.Start}} - {{.Doc.End}}</p></section>{{end}}
<section id="pricing"><h2>Стоимость</h2>
{{if .Doc.FlatFee}}<p>Фиксированная ставка: {{.Doc.FeeAmount}} ({{.Doc.FeeType}})</p>
{{else}}<table>{{range .Doc.LineItems}}<tr><td>{{.Item}}</td><td>{{.Amount}}</td></tr>{{end}}<tr><th>Итого</th><th>{{.Doc.Total}}</th></tr></table>{{end}}
</section>
{{with .Doc.Schedule}}<section id="schedule"><h2>График оплаты</h2><table>{{range .}}<tr><td>{{.Milestone}}</td><td>{{.Amount}}</td><td>{{.DueDate}}</td></tr>{{end}}</table></section>{{end}}
{{if or .Doc.Terms .Doc.TermsText}}<section id="terms"><h2>Условия</h2>{{range .Doc.Terms}}<p><b>{{.Label}}:</b> {{.Value}}</p>{{end}}{{with .Doc.TermsText}}<p>{{.}}</p>{{end}}</section>{{end}}
{{if or .Doc.Responsibilities .Doc.ResponsibleItems}}<section id="responsibilities"><h2>Обязанности клиента</h2>{{range .Doc.Responsibilities}}<p><b>{{.Label}}:</b> {{.Value}}</p>{{end}}{{with .Doc.ResponsibleItems}}<ul>{{range .}}<li>{{.}}</li>{{end}}</ul>{{end}}</section>{{end}}
<section id="signatures"><h2>Подписи</h2>
<p>Исполнитель: {{.Signature.Provider}}</p>
<p>Клиент: {{.Signature.Client}}</p>
{{if .Signature.CanSign}}<form method="post" action="{{.SignURL}}"><input name="name" value="{{.Signature.Draft}}"><button type="submit">Подписать</button></form>{{end}}
{{if .Signature.CanAccept}}<form method="post" action="{{.AcceptURL}}"><button type="submit">Принять</button></form>{{end}}
{{if .Signature.CanReject}}<form method="post" action="{{.RejectURL}}"><button type="submit">Отклонить</button></form>{{end}}
</section>
</article>
</body>
</html>
`
