package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kijiji-rentals/models"
)

func TestUnifierApply(t *testing.T) {
	table := models.NewTable(models.ColBedrooms, "Chambres-à-coucher", "Ville", "Unrelated")
	table.Append(models.Record{models.ColBedrooms: "2", "Chambres-à-coucher": "3", "Ville": "Québec"})
	table.Append(models.Record{"Chambres-à-coucher": "1", "Unrelated": "x"})
	table.Append(models.Record{})

	merged, filled := NewUnifier(newTestLogger()).Apply(table)

	assert.Equal(t, 2, merged)
	assert.Equal(t, 2, filled)
	assert.Equal(t, []string{models.ColBedrooms, models.ColCity, "Unrelated"}, table.Columns)
	assert.Equal(t, []any{"2", "1", nil}, table.Column(models.ColBedrooms))
	assert.Equal(t, []any{"Québec", nil, nil}, table.Column(models.ColCity))
	assert.NotContains(t, table.Records[0], "Chambres-à-coucher")
}

func TestTitleWords(t *testing.T) {
	assert.Equal(t, "City Of Toronto", titleWords("city-of-toronto"))
	assert.Equal(t, "Ville De Québec", titleWords("ville-de-québec"))
}

func TestFoldText(t *testing.T) {
	assert.Equal(t, "fevrier etudiante garcon", foldText("Février Étudiante Garçon"))
	assert.Equal(t, "1 200 $", normaliseText("  1 200 $\n"))
	assert.Equal(t, "Females only", stripHTML("<p>Females <b>only</b></p>"))
}
