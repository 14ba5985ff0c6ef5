package models

// CountryNames maps the ISO 3166-1 alpha-3 codes supported by the Ember API to
// display names used in post text.
var CountryNames = map[string]string{
	"ARG": "Argentina",
	"ARM": "Armenia",
	"AUS": "Australia",
	"AUT": "Austria",
	"AZE": "Azerbaijan",
	"BEL": "Belgium",
	"BGD": "Bangladesh",
	"BGR": "Bulgaria",
	"BIH": "Bosnia and Herzegovina",
	"BLR": "Belarus",
	"BOL": "Bolivia",
	"BRA": "Brazil",
	"CAN": "Canada",
	"CHE": "Switzerland",
	"CHL": "Chile",
	"CHN": "China",
	"COL": "Colombia",
	"CRI": "Costa Rica",
	"CYP": "Cyprus",
	"CZE": "Czech Republic",
	"DEU": "Germany",
	"DNK": "Denmark",
	"DOM": "Dominican Republic",
	"ECU": "Ecuador",
	"EGY": "Egypt",
	"ESP": "Spain",
	"EST": "Estonia",
	"FIN": "Finland",
	"FRA": "France",
	"GBR": "United Kingdom",
	"GEO": "Georgia",
	"GRC": "Greece",
	"HRV": "Croatia",
	"HUN": "Hungary",
	"IND": "India",
	"IRL": "Ireland",
	"IRN": "Iran",
	"ITA": "Italy",
	"JPN": "Japan",
	"KAZ": "Kazakhstan",
	"KEN": "Kenya",
	"KGZ": "Kyrgyzstan",
	"KOR": "South Korea",
	"KWT": "Kuwait",
	"LKA": "Sri Lanka",
	"LTU": "Lithuania",
	"LUX": "Luxembourg",
	"LVA": "Latvia",
	"MAR": "Morocco",
	"MDA": "Moldova",
	"MEX": "Mexico",
	"MKD": "North Macedonia",
	"MLT": "Malta",
	"MMR": "Myanmar",
	"MNE": "Montenegro",
	"MNG": "Mongolia",
	"MYS": "Malaysia",
	"NGA": "Nigeria",
	"NLD": "Netherlands",
	"NOR": "Norway",
	"NZL": "New Zealand",
	"OMN": "Oman",
	"PAK": "Pakistan",
	"PER": "Peru",
	"PHL": "Philippines",
	"POL": "Poland",
	"PRI": "Puerto Rico",
	"PRT": "Portugal",
	"QAT": "Qatar",
	"ROU": "Romania",
	"RUS": "Russia",
	"SGP": "Singapore",
	"SLV": "El Salvador",
	"SRB": "Serbia",
	"SVK": "Slovakia",
	"SVN": "Slovenia",
	"SWE": "Sweden",
	"THA": "Thailand",
	"TJK": "Tajikistan",
	"TUN": "Tunisia",
	"TUR": "Turkey",
	"TWN": "Taiwan",
	"UKR": "Ukraine",
	"URY": "Uruguay",
	"USA": "United States",
	"VNM": "Vietnam",
	"XKX": "Kosovo",
	"ZAF": "South Africa",
}

func ValidCountryCode(code string) bool {
	_, ok := CountryNames[code]
	return ok
}
