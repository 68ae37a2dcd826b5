package database

import (
	"gorm.io/gorm/clause"
)

// defaultServers is the bootstrap server catalog. Free-tier servers cover the
// CIS region; everything else requires a premium subscription.
var defaultServers = []Server{
	// Free servers (CIS)
	{ID: "minsk-1", Name: "Minsk #1", Country: "Belarus", City: "Minsk", Flag: "🇧🇾", Ping: 42, LoadPercentage: 38, IsPremium: false, IsRecommended: true, IsActive: true},
	{ID: "almaty-1", Name: "Almaty #1", Country: "Kazakhstan", City: "Almaty", Flag: "🇰🇿", Ping: 58, LoadPercentage: 29, IsPremium: false, IsRecommended: false, IsActive: true},
	{ID: "tashkent-1", Name: "Tashkent #1", Country: "Uzbekistan", City: "Tashkent", Flag: "🇺🇿", Ping: 65, LoadPercentage: 34, IsPremium: false, IsRecommended: false, IsActive: true},
	{ID: "yerevan-1", Name: "Yerevan #1", Country: "Armenia", City: "Yerevan", Flag: "🇦🇲", Ping: 48, LoadPercentage: 41, IsPremium: false, IsRecommended: false, IsActive: true},
	{ID: "tbilisi-1", Name: "Tbilisi #1", Country: "Georgia", City: "Tbilisi", Flag: "🇬🇪", Ping: 52, LoadPercentage: 36, IsPremium: false, IsRecommended: false, IsActive: true},

	// Premium servers (Europe)
	{ID: "amsterdam-1", Name: "Amsterdam #1", Country: "Netherlands", City: "Amsterdam", Flag: "🇳🇱", Ping: 75, LoadPercentage: 55, IsPremium: true, IsActive: true},
	{ID: "amsterdam-2", Name: "Amsterdam #2", Country: "Netherlands", City: "Amsterdam", Flag: "🇳🇱", Ping: 78, LoadPercentage: 43, IsPremium: true, IsActive: true},
	{ID: "london-1", Name: "London #1", Country: "United Kingdom", City: "London", Flag: "🇬🇧", Ping: 85, LoadPercentage: 62, IsPremium: true, IsActive: true},
	{ID: "paris-1", Name: "Paris #1", Country: "France", City: "Paris", Flag: "🇫🇷", Ping: 82, LoadPercentage: 47, IsPremium: true, IsActive: true},
	{ID: "berlin-1", Name: "Berlin #1", Country: "Germany", City: "Berlin", Flag: "🇩🇪", Ping: 89, LoadPercentage: 51, IsPremium: true, IsActive: true},
	{ID: "zurich-1", Name: "Zurich #1", Country: "Switzerland", City: "Zurich", Flag: "🇨🇭", Ping: 95, LoadPercentage: 33, IsPremium: true, IsActive: true},
	{ID: "vienna-1", Name: "Vienna #1", Country: "Austria", City: "Vienna", Flag: "🇦🇹", Ping: 91, LoadPercentage: 39, IsPremium: true, IsActive: true},
	{ID: "prague-1", Name: "Prague #1", Country: "Czech Republic", City: "Prague", Flag: "🇨🇿", Ping: 88, LoadPercentage: 44, IsPremium: true, IsActive: true},
	{ID: "warsaw-1", Name: "Warsaw #1", Country: "Poland", City: "Warsaw", Flag: "🇵🇱", Ping: 72, LoadPercentage: 48, IsPremium: true, IsActive: true},

	// Premium servers (Asia)
	{ID: "singapore-1", Name: "Singapore #1", Country: "Singapore", City: "Singapore", Flag: "🇸🇬", Ping: 145, LoadPercentage: 28, IsPremium: true, IsActive: true},
	{ID: "tokyo-1", Name: "Tokyo #1", Country: "Japan", City: "Tokyo", Flag: "🇯🇵", Ping: 165, LoadPercentage: 41, IsPremium: true, IsActive: true},
	{ID: "seoul-1", Name: "Seoul #1", Country: "South Korea", City: "Seoul", Flag: "🇰🇷", Ping: 155, LoadPercentage: 36, IsPremium: true, IsActive: true},
	{ID: "dubai-1", Name: "Dubai #1", Country: "UAE", City: "Dubai", Flag: "🇦🇪", Ping: 125, LoadPercentage: 52, IsPremium: true, IsActive: true},
	{ID: "hongkong-1", Name: "Hong Kong #1", Country: "Hong Kong", City: "Hong Kong", Flag: "🇭🇰", Ping: 135, LoadPercentage: 46, IsPremium: true, IsActive: true},
	{ID: "mumbai-1", Name: "Mumbai #1", Country: "India", City: "Mumbai", Flag: "🇮🇳", Ping: 185, LoadPercentage: 53, IsPremium: true, IsActive: true},

	// Premium servers (Americas)
	{ID: "usa-1", Name: "New York #1", Country: "USA", City: "New York", Flag: "🇺🇸", Ping: 220, LoadPercentage: 67, IsPremium: true, IsActive: true},
	{ID: "usa-2", Name: "Los Angeles #1", Country: "USA", City: "Los Angeles", Flag: "🇺🇸", Ping: 245, LoadPercentage: 58, IsPremium: true, IsActive: true},
	{ID: "usa-3", Name: "Chicago #1", Country: "USA", City: "Chicago", Flag: "🇺🇸", Ping: 235, LoadPercentage: 61, IsPremium: true, IsActive: true},
	{ID: "canada-1", Name: "Toronto #1", Country: "Canada", City: "Toronto", Flag: "🇨🇦", Ping: 215, LoadPercentage: 44, IsPremium: true, IsActive: true},
	{ID: "brazil-1", Name: "Sao Paulo #1", Country: "Brazil", City: "Sao Paulo", Flag: "🇧🇷", Ping: 280, LoadPercentage: 39, IsPremium: true, IsActive: true},
	{ID: "mexico-1", Name: "Mexico City #1", Country: "Mexico", City: "Mexico City", Flag: "🇲🇽", Ping: 265, LoadPercentage: 42, IsPremium: true, IsActive: true},

	// Premium servers (Oceania and Africa)
	{ID: "australia-1", Name: "Sydney #1", Country: "Australia", City: "Sydney", Flag: "🇦🇺", Ping: 320, LoadPercentage: 31, IsPremium: true, IsActive: true},
	{ID: "newzealand-1", Name: "Auckland #1", Country: "New Zealand", City: "Auckland", Flag: "🇳🇿", Ping: 340, LoadPercentage: 28, IsPremium: true, IsActive: true},
	{ID: "southafrica-1", Name: "Cape Town #1", Country: "South Africa", City: "Cape Town", Flag: "🇿🇦", Ping: 298, LoadPercentage: 27, IsPremium: true, IsActive: true},

	// Premium servers (Scandinavia)
	{ID: "sweden-1", Name: "Stockholm #1", Country: "Sweden", City: "Stockholm", Flag: "🇸🇪", Ping: 68, LoadPercentage: 35, IsPremium: true, IsActive: true},
	{ID: "norway-1", Name: "Oslo #1", Country: "Norway", City: "Oslo", Flag: "🇳🇴", Ping: 71, LoadPercentage: 32, IsPremium: true, IsActive: true},
	{ID: "finland-1", Name: "Helsinki #1", Country: "Finland", City: "Helsinki", Flag: "🇫🇮", Ping: 65, LoadPercentage: 37, IsPremium: true, IsActive: true},
	{ID: "denmark-1", Name: "Copenhagen #1", Country: "Denmark", City: "Copenhagen", Flag: "🇩🇰", Ping: 73, LoadPercentage: 40, IsPremium: true, IsActive: true},
}

// Seed installs the default server catalog. Existing entries are replaced by
// slug, so running it on every startup is safe. This is a bootstrap
// operation; the catalog is read-only from the API surface.
// Returns an error if any upsert fails.
func (db *Database) Seed() error {
	for i := range defaultServers {
		server := defaultServers[i]
		if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&server).Error; err != nil {
			return err
		}
	}
	return nil
}
