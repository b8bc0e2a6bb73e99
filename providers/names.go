package providers

const (
	// Identifier for MaxMind GeoLite2/GeoIP2 City databases.
	NameMaxmind = "maxmind"

	// Identifier for IP2Location BIN databases.
	NameIP2Location = "ip2location"

	// Identifier for Sypex Geo City databases.
	NameSypex = "sypex"

	// Identifier for CSV files with ip ranges and coordinates.
	NameCSVDB = "csvdb"
)
