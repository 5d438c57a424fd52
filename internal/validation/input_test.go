package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateProposalTitle(t *testing.T) {
	assert.NoError(t, ValidateProposalTitle(""))
	assert.NoError(t, ValidateProposalTitle("Редизайн сайта"))
	assert.NoError(t, ValidateProposalTitle(strings.Repeat("я", MaxProposalTitleLength)))
	assert.Error(t, ValidateProposalTitle(strings.Repeat("я", MaxProposalTitleLength+1)))
}

func TestValidateTemplateName(t *testing.T) {
	assert.Error(t, ValidateTemplateName("   "))
	assert.NoError(t, ValidateTemplateName("Лендинг"))
	assert.Error(t, ValidateTemplateName(strings.Repeat("a", MaxTemplateNameLength+1)))
}

func TestValidateSignatureName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"обычное имя", "Jane Client", false},
		{"пробелы по краям", "  Jane  ", false},
		{"пустая", "", true},
		{"только пробелы", " \t ", true},
		{"управляющий символ", "Jane\x00Client", true},
		{"слишком длинная", strings.Repeat("x", MaxSignatureNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignatureName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDocumentLimits(t *testing.T) {
	assert.NoError(t, ValidateDeliverables(make([]string, MaxDeliverablesCount)))
	assert.Error(t, ValidateDeliverables(make([]string, MaxDeliverablesCount+1)))
	assert.NoError(t, ValidateScopeOfWork(""))
	assert.Error(t, ValidateScopeOfWork(strings.Repeat("a", MaxScopeOfWorkLength+1)))
}

func TestNormalizePagination(t *testing.T) {
	limit, offset := NormalizePagination(0, -5)
	assert.Equal(t, DefaultListLimit, limit)
	assert.Zero(t, offset)

	limit, _ = NormalizePagination(1000, 0)
	assert.Equal(t, MaxListLimit, limit)

	limit, offset = NormalizePagination(10, 30)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 30, offset)
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, ValidateBaseURL("https://app.example.com"))
	assert.NoError(t, ValidateBaseURL("http://localhost:3000"))
	assert.Error(t, ValidateBaseURL("ftp://app.example.com"))
	assert.Error(t, ValidateBaseURL("app.example.com"))
	assert.Error(t, ValidateBaseURL("https://"))
}
