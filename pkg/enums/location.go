package enums

const (
	// CountryWorldwide is the default country of a new or synthesized location.
	CountryWorldwide = "Worldwide"
	// CountryFrance is the only country whose locations carry a region.
	CountryFrance = "France"
)

var countries = []string{
	CountryWorldwide, CountryFrance, "Belgique", "Suisse", "Canada", "États-Unis", "Espagne", "Italie",
	"Allemagne", "Maroc", "Tunisie", "Royaume-Uni", "Portugal", "Pays-Bas",
	"Luxembourg", "Suède", "Norvège", "Australie", "Nouvelle-Zélande",
}

var frenchRegions = []string{
	"Île-de-France", "Occitanie", "Provence-Alpes-Côte d’Azur", "Nouvelle-Aquitaine",
	"Bretagne", "Grand Est", "Auvergne-Rhône-Alpes", "Normandie",
	"Centre-Val de Loire", "Hauts-de-France", "Pays de la Loire",
	"Bourgogne-Franche-Comté", "Corse", "La Réunion", "Guadeloupe", "Martinique", "Guyane",
}

func Countries() []string {
	return append([]string(nil), countries...)
}

func FrenchRegions() []string {
	return append([]string(nil), frenchRegions...)
}

func IsValidCountry(country string) bool {
	return contains(countries, country)
}

func IsFrenchRegion(region string) bool {
	return contains(frenchRegions, region)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
