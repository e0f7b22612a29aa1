package services

import (
	"kijiji-rentals/models"
	"kijiji-rentals/utils"
)

// frenchAttributes maps the attribute keys of the French site onto the
// canonical English column names.
var frenchAttributes = map[string]string{
	"Meublé":                 "Furnished",
	"Chambres-à-coucher":     models.ColBedrooms,
	"Salles-de-bains":        models.ColBathrooms,
	"Type-d'unité":           models.ColUnitType,
	"Type-de-contrat":        models.ColAgreementType,
	"Date-d'emménagement":    models.ColMoveInDate,
	"Stationnement-inclus":   models.ColParking,
	"Taille-(pi²)":           models.ColSize,
	"Animaux-acceptés":       "Pet-Friendly",
	"Fumeurs-acceptés":       "Smoking-Permitted",
	"Air-climatisé":          "Air-Conditioning",
	"Plus-d'info":            "More-Info",
	"Ville":                  models.ColCity,

	"Services-inclus-Électricité": "Utilities-Included-Hydro",
	"Services-inclus-Chauffage":   "Utilities-Included-Heat",
	"Services-inclus-Eau":         "Utilities-Included-Water",
	"Wi-Fi-et-plus-Internet":      "Wi-Fi-and-More-Internet",
	"Wi-Fi-et-plus-Câble-/-Télé":  "Wi-Fi-and-More-Cable-/-TV",

	"Électroménagers-Buanderie-(dans-le-logement)": "Appliances-Laundry-(In-Unit)",
	"Électroménagers-Buanderie-(dans-l'immeuble)":  "Appliances-Laundry-(In-Building)",
	"Électroménagers-Lave-vaisselle":               "Appliances-Dishwasher",
	"Électroménagers-Réfrigérateur-/-Congélateur":  "Appliances-Fridge-/-Freezer",

	"Espace-extérieur-personnel-Balcon": "Personal-Outdoor-Space-Balcony",
	"Espace-extérieur-personnel-Cour":   "Personal-Outdoor-Space-Yard",

	"Commodités-Gym":                      "Amenities-Gym",
	"Commodités-Piscine":                  "Amenities-Pool",
	"Commodités-Concierge":                "Amenities-Concierge",
	"Commodités-Sécurité-24-heures-sur-24": "Amenities-24-Hour-Security",
	"Commodités-Stationnement-pour-vélos":  "Amenities-Bicycle-Parking",
	"Commodités-Espace-de-rangement":       "Amenities-Storage-Space",
	"Commodités-Ascenseur-dans-l'immeuble": "Amenities-Elevator-in-Building",

	"Ascenseur-Accessibilité-Accessible-aux-fauteuils-roulants": "Elevator-Accessibility-Features-Wheelchair-accessible",
	"Ascenseur-Accessibilité-Étiquettes-en-braille":             "Elevator-Accessibility-Features-Braille-Labels",
	"Ascenseur-Accessibilité-Signaux-sonores":                   "Elevator-Accessibility-Features-Audio-Prompts",
	"Entrées-et-rampes-sans-obstacles":                          "Barrier-free-Entrances-and-Ramps",
	"Aides-visuelles":                                           "Visual-Aids",
	"Toilettes-accessibles-dans-le-logement":                    "Accessible-Washrooms-in-Suite",
}

// Unifier folds French attribute columns into their English counterparts.
type Unifier struct {
	logger   *utils.Logger
	synonyms map[string]string
}

// NewUnifier creates a Unifier over the built-in French vocabulary.
func NewUnifier(logger *utils.Logger) *Unifier {
	return &Unifier{logger: logger, synonyms: frenchAttributes}
}

// Apply merges every synonym column present in t. The canonical value is kept
// when set; otherwise the synonym's value fills it. Synonym columns are
// removed. It returns the number of merged columns and of filled cells.
func (u *Unifier) Apply(t *models.Table) (merged, filled int) {
	columns := append([]string(nil), t.Columns...)
	for _, col := range columns {
		canonical, ok := u.synonyms[col]
		if !ok {
			continue
		}
		merged++

		if !t.Has(canonical) {
			t.RenameColumn(col, canonical)
			for _, r := range t.Records {
				if !r.Null(canonical) {
					filled++
				}
			}
			continue
		}

		for _, r := range t.Records {
			if r.Null(canonical) && !r.Null(col) {
				r[canonical] = r[col]
				filled++
			}
		}
		t.DropColumn(col)
	}

	u.logger.Info("[unifier] Merged %d French columns, filled %d values", merged, filled)
	return merged, filled
}
