package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kijiji-rentals/models"
)

func TestClassifierApply(t *testing.T) {
	tests := []struct {
		name            string
		record          models.Record
		wantCategory    any
		wantCommercial  bool
		wantResidential bool
		wantCity        any
		wantSlug        any
	}{
		{
			name:            "apartment",
			record:          models.Record{models.ColAdURL: "https://www.kijiji.ca/v-apartments-condos/city-of-toronto/bright-2-bedroom/1234"},
			wantCategory:    CategoryApartments,
			wantResidential: true,
			wantCity:        "City Of Toronto",
			wantSlug:        "bright 2 bedroom",
		},
		{
			name:           "french commercial relative url",
			record:         models.Record{models.ColAdURL: "/v-espace-commercial-bureau/ville-de-montreal/bureau-a-louer/55"},
			wantCategory:   CategoryCommercial,
			wantCommercial: true,
			wantCity:       "Ville De Montreal",
			wantSlug:       "bureau a louer",
		},
		{
			name:           "storage keeps existing city",
			record:         models.Record{models.ColAdURL: "/v-storage-parking/ottawa/garage/9", models.ColCity: "Ottawa"},
			wantCategory:   CategoryStorage,
			wantCommercial: true,
			wantCity:       "Ottawa",
			wantSlug:       "garage",
		},
		{
			name:            "room rental",
			record:          models.Record{models.ColAdURL: "/v-chambres-a-louer-colocataire/gatineau/chambre/7"},
			wantCategory:    CategoryRoom,
			wantResidential: true,
			wantCity:        "Gatineau",
			wantSlug:        "chambre",
		},
		{
			name:   "missing url",
			record: models.Record{},
		},
		{
			name:     "unknown category",
			record:   models.Record{models.ColAdURL: "/v-cars-trucks/toronto/civic/1"},
			wantCity: "Toronto",
			wantSlug: "civic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := tableOf(tt.record)
			unknown := NewClassifier(newTestLogger()).Apply(table)

			r := table.Records[0]
			assert.Equal(t, tt.wantCategory, r[models.ColRentalCategory])
			assert.Equal(t, tt.wantCommercial, r[models.ColCommercial])
			assert.Equal(t, tt.wantResidential, r[models.ColResidential])
			assert.Equal(t, tt.wantCity, r[models.ColCity])
			assert.Equal(t, tt.wantSlug, r[models.ColURLSlug])
			if tt.wantCategory == nil {
				assert.Equal(t, 1, unknown)
			} else {
				assert.Equal(t, 0, unknown)
			}
		})
	}
}

func TestClassifierFlagsAreExclusive(t *testing.T) {
	table := tableOf(
		models.Record{models.ColAdURL: "/v-short-term-rental/banff/cabin/1"},
		models.Record{models.ColAdURL: "/v-commercial-office-space/calgary/office/2"},
		models.Record{models.ColAdURL: "not a url at all"},
	)
	NewClassifier(newTestLogger()).Apply(table)

	for _, r := range table.Records {
		commercial, _ := r.Bool(models.ColCommercial)
		residential, _ := r.Bool(models.ColResidential)
		assert.False(t, commercial && residential)
		assert.Equal(t, !r.Null(models.ColRentalCategory), commercial || residential)
	}
}

func TestAnonymizerApply(t *testing.T) {
	table := tableOf(
		models.Record{models.ColPoster: "alice", models.ColAdID: "1001"},
		models.Record{models.ColPoster: "bob", models.ColAdID: "1002"},
		models.Record{models.ColPoster: "alice", models.ColAdID: "1003"},
		models.Record{models.ColAdID: "1001"},
	)
	table.AddColumn(models.ColAdURL)

	s := NewSurrogates()
	NewAnonymizer(newTestLogger()).Apply(table, s)

	assert.Equal(t, []any{int64(0), int64(1), int64(0), nil}, table.Column(models.ColPoster))
	assert.Equal(t, []any{int64(0), int64(1), int64(2), int64(0)}, table.Column(models.ColAdID))
	assert.Equal(t, []any{nil, nil, nil, nil}, table.Column(models.ColAdURL))
	assert.Equal(t, 2, s.Len(models.ColPoster))
	assert.Equal(t, 3, s.Len(models.ColAdID))
}

func TestSurrogatesArePerColumn(t *testing.T) {
	s := NewSurrogates()
	assert.Equal(t, int64(0), s.ID("a", "x"))
	assert.Equal(t, int64(0), s.ID("b", "y"))
	assert.Equal(t, int64(1), s.ID("a", "y"))
	assert.Equal(t, int64(0), s.ID("a", "x"))
}
