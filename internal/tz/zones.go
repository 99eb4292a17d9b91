package tz

// zoneTable is the curated set of zones the registry serves. It is a
// population-weighted subset of the IANA database, roughly ordered within
// each region; registry candidate ranking follows table order.
//
// Every abbreviation candidate and place alias must reference an ID listed
// here; NewRegistry validates that at startup.
var zoneTable = []struct {
	id      ZoneID
	country string
}{
	{"UTC", ""},

	// Americas
	{"America/New_York", "US"},
	{"America/Chicago", "US"},
	{"America/Denver", "US"},
	{"America/Phoenix", "US"},
	{"America/Los_Angeles", "US"},
	{"America/Anchorage", "US"},
	{"Pacific/Honolulu", "US"},
	{"America/Puerto_Rico", "PR"},
	{"America/Toronto", "CA"},
	{"America/Winnipeg", "CA"},
	{"America/Edmonton", "CA"},
	{"America/Vancouver", "CA"},
	{"America/Halifax", "CA"},
	{"America/St_Johns", "CA"},
	{"America/Regina", "CA"},
	{"America/Mexico_City", "MX"},
	{"America/Guatemala", "GT"},
	{"America/Panama", "PA"},
	{"America/Havana", "CU"},
	{"America/Bogota", "CO"},
	{"America/Lima", "PE"},
	{"America/Caracas", "VE"},
	{"America/Santiago", "CL"},
	{"America/Sao_Paulo", "BR"},
	{"America/Argentina/Buenos_Aires", "AR"},
	{"America/Montevideo", "UY"},

	// Europe
	{"Europe/London", "GB"},
	{"Europe/Dublin", "IE"},
	{"Europe/Lisbon", "PT"},
	{"Europe/Madrid", "ES"},
	{"Europe/Paris", "FR"},
	{"Europe/Brussels", "BE"},
	{"Europe/Amsterdam", "NL"},
	{"Europe/Berlin", "DE"},
	{"Europe/Zurich", "CH"},
	{"Europe/Rome", "IT"},
	{"Europe/Vienna", "AT"},
	{"Europe/Prague", "CZ"},
	{"Europe/Stockholm", "SE"},
	{"Europe/Oslo", "NO"},
	{"Europe/Copenhagen", "DK"},
	{"Europe/Warsaw", "PL"},
	{"Europe/Budapest", "HU"},
	{"Europe/Athens", "GR"},
	{"Europe/Bucharest", "RO"},
	{"Europe/Helsinki", "FI"},
	{"Europe/Kyiv", "UA"},
	{"Europe/Istanbul", "TR"},
	{"Europe/Moscow", "RU"},

	// Africa
	{"Africa/Casablanca", "MA"},
	{"Africa/Accra", "GH"},
	{"Africa/Lagos", "NG"},
	{"Africa/Cairo", "EG"},
	{"Africa/Harare", "ZW"},
	{"Africa/Johannesburg", "ZA"},
	{"Africa/Nairobi", "KE"},

	// Asia
	{"Asia/Jerusalem", "IL"},
	{"Asia/Riyadh", "SA"},
	{"Asia/Dubai", "AE"},
	{"Asia/Tehran", "IR"},
	{"Asia/Karachi", "PK"},
	{"Asia/Kolkata", "IN"},
	{"Asia/Colombo", "LK"},
	{"Asia/Kathmandu", "NP"},
	{"Asia/Dhaka", "BD"},
	{"Asia/Yangon", "MM"},
	{"Asia/Bangkok", "TH"},
	{"Asia/Ho_Chi_Minh", "VN"},
	{"Asia/Jakarta", "ID"},
	{"Asia/Makassar", "ID"},
	{"Asia/Jayapura", "ID"},
	{"Asia/Singapore", "SG"},
	{"Asia/Kuala_Lumpur", "MY"},
	{"Asia/Manila", "PH"},
	{"Asia/Hong_Kong", "HK"},
	{"Asia/Taipei", "TW"},
	{"Asia/Shanghai", "CN"},
	{"Asia/Seoul", "KR"},
	{"Asia/Tokyo", "JP"},

	// Oceania
	{"Australia/Perth", "AU"},
	{"Australia/Adelaide", "AU"},
	{"Australia/Darwin", "AU"},
	{"Australia/Brisbane", "AU"},
	{"Australia/Sydney", "AU"},
	{"Australia/Melbourne", "AU"},
	{"Pacific/Auckland", "NZ"},
	{"Pacific/Fiji", "FJ"},
}

// placeAliases maps extra lowercase place spellings to zone candidates,
// on top of the city index derived from zoneTable IDs.
var placeAliases = map[string][]ZoneID{
	"nyc":         {"America/New_York"},
	"new york":    {"America/New_York"},
	"los angeles": {"America/Los_Angeles"},
	"san francisco": {"America/Los_Angeles"},
	"seattle":     {"America/Los_Angeles"},
	"boston":      {"America/New_York"},
	"washington":  {"America/New_York"},
	"miami":       {"America/New_York"},
	"dallas":      {"America/Chicago"},
	"houston":     {"America/Chicago"},
	"montreal":    {"America/Toronto"},
	"mexico city": {"America/Mexico_City"},
	"sao paulo":   {"America/Sao_Paulo"},
	"rio":         {"America/Sao_Paulo"},
	"buenos aires": {"America/Argentina/Buenos_Aires"},
	"munich":      {"Europe/Berlin"},
	"frankfurt":   {"Europe/Berlin"},
	"barcelona":   {"Europe/Madrid"},
	"milan":       {"Europe/Rome"},
	"geneva":      {"Europe/Zurich"},
	"kiev":        {"Europe/Kyiv"},
	"st petersburg": {"Europe/Moscow"},
	"tel aviv":    {"Asia/Jerusalem"},
	"mumbai":      {"Asia/Kolkata"},
	"delhi":       {"Asia/Kolkata"},
	"new delhi":   {"Asia/Kolkata"},
	"bangalore":   {"Asia/Kolkata"},
	"bengaluru":   {"Asia/Kolkata"},
	"hanoi":       {"Asia/Ho_Chi_Minh"},
	"saigon":      {"Asia/Ho_Chi_Minh"},
	"ho chi minh": {"Asia/Ho_Chi_Minh"},
	"bali":        {"Asia/Makassar"},
	"beijing":     {"Asia/Shanghai"},
	"shenzhen":    {"Asia/Shanghai"},
	"osaka":       {"Asia/Tokyo"},
	"canberra":    {"Australia/Sydney"},
	"wellington":  {"Pacific/Auckland"},
}
