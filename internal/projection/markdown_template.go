package projection

import (
	"fmt"
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

const TemplateMarkdown = "markdown"

// MarkdownTemplate выводит предложение в Markdown. Описание работ и текст
// условий хранятся как HTML из редактора и переводятся в Markdown.
type MarkdownTemplate struct {
	converter *md.Converter
}

func NewMarkdownTemplate() *MarkdownTemplate {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &MarkdownTemplate{converter: converter}
}

func (t *MarkdownTemplate) Name() string {
	return TemplateMarkdown
}

func (t *MarkdownTemplate) ContentType() string {
	return "text/markdown; charset=utf-8"
}

func (t *MarkdownTemplate) Render(w io.Writer, p Projection) error {
	view := newDocumentView(p.Document)
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", p.Proposal.Title)
	fmt.Fprintf(&b, "Статус: **%s** · версия %d\n\n", p.Proposal.Status, p.Proposal.CurrentVersion)

	if view.ScopeOfWork != "" {
		scope, err := t.converter.ConvertString(view.ScopeOfWork)
		if err != nil {
			return fmt.Errorf("projection: не удалось преобразовать описание работ: %w", err)
		}
		b.WriteString("## Описание работ\n\n")
		b.WriteString(strings.TrimSpace(scope))
		b.WriteString("\n\n")
	}

	if len(view.Deliverables) > 0 {
		b.WriteString("## Результаты\n\n")
		for _, item := range view.Deliverables {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}

	if view.Start != "" || view.End != "" {
		b.WriteString("## Сроки\n\n")
		fmt.Fprintf(&b, "%s - %s\n\n", orDash(view.Start), orDash(view.End))
	}

	b.WriteString("## Стоимость\n\n")
	if view.FlatFee {
		fmt.Fprintf(&b, "Фиксированная ставка: %s (%s)\n\n", view.FeeAmount, view.FeeType)
	} else {
		b.WriteString("| Позиция | Сумма |\n|---|---:|\n")
		for _, item := range view.LineItems {
			fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(item.Item), item.Amount)
		}
		fmt.Fprintf(&b, "| **Итого** | **%s** |\n\n", view.Total)
	}

	if len(view.Schedule) > 0 {
		b.WriteString("## График оплаты\n\n| Этап | Сумма | Срок |\n|---|---:|---|\n")
		for _, m := range view.Schedule {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(m.Milestone), m.Amount, orDash(m.DueDate))
		}
		b.WriteString("\n")
	}

	if view.TermsText != "" || len(view.Terms) > 0 {
		b.WriteString("## Условия\n\n")
		writeLabeled(&b, view.Terms)
		if view.TermsText != "" {
			terms, err := t.converter.ConvertString(view.TermsText)
			if err != nil {
				return fmt.Errorf("projection: не удалось преобразовать условия: %w", err)
			}
			b.WriteString(strings.TrimSpace(terms))
			b.WriteString("\n\n")
		}
	}

	if len(view.Responsibilities) > 0 || len(view.ResponsibleItems) > 0 {
		b.WriteString("## Обязанности клиента\n\n")
		writeLabeled(&b, view.Responsibilities)
		for _, item := range view.ResponsibleItems {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		if len(view.ResponsibleItems) > 0 {
			b.WriteString("\n")
		}
	}

	b.WriteString("## Подписи\n\n")
	fmt.Fprintf(&b, "- Исполнитель: %s\n", orDash(p.Signature.Provider))
	fmt.Fprintf(&b, "- Клиент: %s\n", orDash(p.Signature.Client))

	_, err := io.WriteString(w, b.String())
	return err
}

func writeLabeled(b *strings.Builder, items []labeled) {
	if len(items) == 0 {
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- **%s:** %s\n", item.Label, item.Value)
	}
	b.WriteString("\n")
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func escapeCell(v string) string {
	return strings.ReplaceAll(v, "|", `\|`)
}
