package persistence

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/document"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$3, $4, $5", placeholders(3, 3))
	assert.Equal(t, "scope_of_work = $2", sectionAssignments(2)[:len("scope_of_work = $2")])
}

func TestEncodeSections_AllCanonical(t *testing.T) {
	doc := document.New()
	require.NoError(t, doc.SetDeliverables([]string{"Audit"}))
	require.NoError(t, doc.SetPricing(valueobject.FlatFeePricing(valueobject.FlatFee{
		Amount:   100,
		Currency: valueobject.CurrencyUSD,
		Type:     valueobject.FeeTypeFixed,
	})))

	cols, err := encodeSections(doc)

	require.NoError(t, err)
	fields := cols.fields()
	require.Len(t, fields, len(codec.Sections))
	for _, section := range codec.Sections {
		assert.NoError(t, codec.Verify(section, fields[section.String()]), section)
	}
	assert.True(t, doc.Equal(cols.document()))
}

func TestSectionColumns_NullStaysAbsent(t *testing.T) {
	cols := sectionColumns{
		Pricing: sql.NullString{String: `"{\"amount\":\"1500\"}"`, Valid: true},
	}

	fields := cols.fields()

	assert.Equal(t, map[string]string{"pricing": `"{\"amount\":\"1500\"}"`}, fields)
	assert.Equal(t, 1500.0, cols.document().Pricing().Total())
}
