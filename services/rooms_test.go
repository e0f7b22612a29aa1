package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

func fixedText(s string) func() string {
	return func() string { return s }
}

func TestResolveBedrooms(t *testing.T) {
	tests := []struct {
		raw    string
		text   string
		want   int64
		wantOK bool
	}{
		{"2", "", 2, true},
		{"two", "", 2, true},
		{"Deux", "", 2, true},
		{"Bachelor/Studio", "", 1, true},
		{"Studio", "", 1, true},
		{"2 + Den", "", 3, true},
		{"1 + Den", "", 2, true},
		{"3 + Bureau", "", 4, true},
		{"Not-Available", "spacious 2 bedroom", 0, false},
		{"", "spacious 2 bedroom apartment", 2, true},
		{"", "bright three-bedroom house", 3, true},
		{"", "deux chambres a louer", 2, true},
		{"", "12 bedrooms available", 0, false},
		{"", "nice place", 0, false},
	}

	for _, tt := range tests {
		got, ok := resolveBedrooms(tt.raw, fixedText(tt.text))
		assert.Equal(t, tt.wantOK, ok, "resolveBedrooms(%q, %q) ok", tt.raw, tt.text)
		assert.Equal(t, tt.want, got, "resolveBedrooms(%q, %q)", tt.raw, tt.text)
	}
}

func TestResolveBedroomsSkipsTextWhenAttributeSet(t *testing.T) {
	called := false
	_, _ = resolveBedrooms("2", func() string {
		called = true
		return ""
	})
	assert.False(t, called)
}

func TestResolveBathrooms(t *testing.T) {
	tests := []struct {
		raw    string
		text   string
		want   float64
		wantOK bool
	}{
		{"1", "", 1, true},
		{"1.5", "", 1.5, true},
		{".5", "", 0.5, true},
		{"1,5", "", 1.5, true},
		{"2 bathrooms", "", 2, true},
		{"abc", "", 0, false},
		{"", "1.5 bath condo", 1.5, true},
		{"", "2 salles de bains", 2, true},
		{"", "no info", 0, false},
	}

	for _, tt := range tests {
		got, ok := resolveBathrooms(tt.raw, fixedText(tt.text))
		assert.Equal(t, tt.wantOK, ok, "resolveBathrooms(%q, %q) ok", tt.raw, tt.text)
		assert.Equal(t, tt.want, got, "resolveBathrooms(%q, %q)", tt.raw, tt.text)
	}
}

func TestRoomResolverApply(t *testing.T) {
	table := tableOf(
		models.Record{models.ColBedrooms: "2 + Den", models.ColBathrooms: "1.5"},
		models.Record{models.ColTitle: "Cozy 1 Bedroom near metro"},
		models.Record{models.ColBedrooms: "Not-Available", models.ColTitle: "3 bedroom house"},
	)

	NewRoomResolver(newTestLogger()).Apply(table, utils.NewWorkerPool(2))

	assert.Equal(t, int64(3), table.Records[0][models.ColNumberBedrooms])
	assert.Equal(t, 1.5, table.Records[0][models.ColNumberBathrooms])
	assert.Equal(t, int64(1), table.Records[1][models.ColNumberBedrooms])
	assert.Nil(t, table.Records[1][models.ColNumberBathrooms])
	assert.Nil(t, table.Records[2][models.ColNumberBedrooms])
}
