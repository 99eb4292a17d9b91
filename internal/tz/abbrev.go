package tz

// abbrevTable maps uppercase timezone abbreviations to ranked zone
// candidates (most common usage first). Tokens are matched
// case-insensitively; candidates are deduplicated at registry init.
//
// Single-candidate entries (EST, PST, JST, ...) resolve confidently.
// Multi-candidate entries (CST, IST, AST, ...) stay ambiguous unless a
// requester-context tie-break applies.
var abbrevTable = map[string][]ZoneID{
	"UTC": {"UTC"},
	"GMT": {"UTC"},
	"Z":   {"UTC"},

	// North America
	"EST":  {"America/New_York"},
	"EDT":  {"America/New_York"},
	"ET":   {"America/New_York"},
	"CDT":  {"America/Chicago", "America/Havana"},
	"CT":   {"America/Chicago"},
	"MST":  {"America/Denver", "America/Phoenix"},
	"MDT":  {"America/Denver"},
	"MT":   {"America/Denver"},
	"PST":  {"America/Los_Angeles"},
	"PDT":  {"America/Los_Angeles"},
	"PT":   {"America/Los_Angeles"},
	"AKST": {"America/Anchorage"},
	"AKDT": {"America/Anchorage"},
	"HST":  {"Pacific/Honolulu"},
	"ADT":  {"America/Halifax"},
	"NST":  {"America/St_Johns"},
	"NDT":  {"America/St_Johns"},

	// The classic many-way collisions.
	"CST": {"America/Chicago", "Asia/Shanghai", "America/Havana"},
	"IST": {"Asia/Kolkata", "Asia/Jerusalem", "Europe/Dublin"},
	"AST": {"America/Halifax", "Asia/Riyadh", "America/Puerto_Rico"},

	// South America
	"BRT": {"America/Sao_Paulo"},
	"ART": {"America/Argentina/Buenos_Aires"},
	"CLT": {"America/Santiago"},
	"COT": {"America/Bogota"},
	"PET": {"America/Lima"},
	"VET": {"America/Caracas"},

	// Europe
	"BST":  {"Europe/London"},
	"WET":  {"Europe/Lisbon"},
	"WEST": {"Europe/Lisbon"},
	"CET":  {"Europe/Paris", "Europe/Berlin", "Europe/Rome", "Europe/Madrid", "Europe/Warsaw"},
	"CEST": {"Europe/Paris", "Europe/Berlin", "Europe/Rome", "Europe/Madrid", "Europe/Warsaw"},
	"EET":  {"Europe/Athens", "Europe/Helsinki", "Europe/Bucharest", "Europe/Kyiv"},
	"EEST": {"Europe/Athens", "Europe/Helsinki", "Europe/Bucharest", "Europe/Kyiv"},
	"TRT":  {"Europe/Istanbul"},
	"MSK":  {"Europe/Moscow"},

	// Africa
	"WAT":  {"Africa/Lagos"},
	"CAT":  {"Africa/Harare"},
	"EAT":  {"Africa/Nairobi"},
	"SAST": {"Africa/Johannesburg"},

	// Middle East / Asia
	"GST":  {"Asia/Dubai"},
	"IRST": {"Asia/Tehran"},
	"PKT":  {"Asia/Karachi"},
	"NPT":  {"Asia/Kathmandu"},
	"ICT":  {"Asia/Bangkok"},
	"WIB":  {"Asia/Jakarta"},
	"WITA": {"Asia/Makassar"},
	"WIT":  {"Asia/Jayapura"},
	"SGT":  {"Asia/Singapore"},
	"MYT":  {"Asia/Kuala_Lumpur"},
	"PHT":  {"Asia/Manila"},
	"HKT":  {"Asia/Hong_Kong"},
	"JST":  {"Asia/Tokyo"},
	"KST":  {"Asia/Seoul"},

	// Oceania
	"AWST": {"Australia/Perth"},
	"ACST": {"Australia/Adelaide", "Australia/Darwin"},
	"ACDT": {"Australia/Adelaide"},
	"AEST": {"Australia/Sydney", "Australia/Brisbane"},
	"AEDT": {"Australia/Sydney"},
	"NZST": {"Pacific/Auckland"},
	"NZDT": {"Pacific/Auckland"},
}
