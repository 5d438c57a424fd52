package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MaxProposalTitleLength = 200
	MinTemplateNameLength  = 1
	MaxTemplateNameLength  = 200
	MaxTemplateDescLength  = 2000
	MaxSignatureNameLength = 200
	MaxScopeOfWorkLength   = 100000
	MaxDeliverablesCount   = 200
	MaxListLimit           = 100
	DefaultListLimit       = 20
	MaxBaseURLLength       = 500
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateProposalTitle проверяет название предложения. Пустое название
// допустимо в черновике.
func ValidateProposalTitle(title string) error {
	return ValidateLength("название предложения", strings.TrimSpace(title), 0, MaxProposalTitleLength)
}

// ValidateTemplateName проверяет название шаблона.
func ValidateTemplateName(name string) error {
	if err := ValidateNonEmpty("название шаблона", name); err != nil {
		return err
	}
	return ValidateLength("название шаблона", strings.TrimSpace(name), MinTemplateNameLength, MaxTemplateNameLength)
}

// ValidateTemplateDescription проверяет описание шаблона.
func ValidateTemplateDescription(description string) error {
	return ValidateLength("описание шаблона", strings.TrimSpace(description), 0, MaxTemplateDescLength)
}

// ValidateSignatureName проверяет имя, которое клиент вводит как подпись.
func ValidateSignatureName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("подпись не может быть пустой")
	}
	if err := ValidateLength("подпись", name, 1, MaxSignatureNameLength); err != nil {
		return err
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("подпись содержит недопустимые символы")
		}
	}
	return nil
}

// ValidateDeliverables ограничивает размер списка результатов.
func ValidateDeliverables(items []string) error {
	if len(items) > MaxDeliverablesCount {
		return fmt.Errorf("количество результатов не может превышать %d", MaxDeliverablesCount)
	}
	return nil
}

// ValidateScopeOfWork ограничивает размер описания работ.
func ValidateScopeOfWork(scope string) error {
	return ValidateLength("описание работ", scope, 0, MaxScopeOfWorkLength)
}

// NormalizePagination приводит limit и offset к допустимым значениям.
func NormalizePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ValidateBaseURL проверяет адрес, от которого строятся ссылки для клиента.
func ValidateBaseURL(link string) error {
	link = strings.TrimSpace(link)
	if err := ValidateLength("адрес", link, 0, MaxBaseURLLength); err != nil {
		return err
	}

	parsedURL, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("некорректный формат URL")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("адрес должен начинаться с http:// или https://")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("адрес должен содержать доменное имя")
	}
	return nil
}
