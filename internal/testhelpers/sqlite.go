package testhelpers

import (
	"testing"

	"github.com/pageza/vinoteca/backend/internal/database"
	"github.com/pageza/vinoteca/backend/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB returns a migrated in-memory database private to the test.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return db
}

// Catalog is the fixture loaded by SeedCatalog.
type Catalog struct {
	Vineyards []model.Vineyard
	Wines     []model.Wine
	Pairings  []model.FoodPairing
	User      model.User
}

// Wine ids of the fixture, by name.
const (
	CatenaMalbec       int64 = 1
	MugaReserva        int64 = 2
	CloudyBaySauvBlanc int64 = 3
	UnratedRose        int64 = 4
	HouseRed           int64 = 5
)

// SeedCatalog loads a small catalog:
//
//	Muga Reserva (4.7) > Catena Malbec (4.5) > Cloudy Bay (4.2) > House Red (3.1, no vineyard)
//
// plus an unrated rosé that catalog searches never return.
func SeedCatalog(t *testing.T, db *gorm.DB) Catalog {
	t.Helper()

	c := Catalog{
		Vineyards: []model.Vineyard{
			{ID: 1, Name: "Catena Zapata", Region: "Mendoza", Country: "Argentina", Appellation: "Mendoza"},
			{ID: 2, Name: "Bodegas Muga", Region: "Rioja", Country: "Spain", Appellation: "Rioja DOCa"},
			{ID: 3, Name: "Cloudy Bay", Region: "Marlborough", Country: "New Zealand", Appellation: "Marlborough"},
		},
		Wines: []model.Wine{
			{ID: CatenaMalbec, Name: "Catena Malbec", Classification: "Red", Grape: "Malbec", Year: IntPtr(2019), Price: FloatPtr(25), Rating: FloatPtr(4.5), VineyardID: Int64Ptr(1)},
			{ID: MugaReserva, Name: "Muga Reserva", Classification: "Red", Grape: "Tempranillo", Year: IntPtr(2018), Price: FloatPtr(30), Rating: FloatPtr(4.7), VineyardID: Int64Ptr(2)},
			{ID: CloudyBaySauvBlanc, Name: "Cloudy Bay Sauvignon Blanc", Classification: "White", Grape: "Sauvignon Blanc", Year: IntPtr(2022), Price: FloatPtr(28), Rating: FloatPtr(4.2), VineyardID: Int64Ptr(3)},
			{ID: UnratedRose, Name: "Unrated Rosé", Classification: "Rosé", Grape: "Grenache", Year: IntPtr(2021), Price: FloatPtr(12)},
			{ID: HouseRed, Name: "House Red", Classification: "Red", Grape: "Merlot", Year: IntPtr(2020), Price: FloatPtr(9), Rating: FloatPtr(3.1)},
		},
		Pairings: []model.FoodPairing{
			{WineID: CatenaMalbec, Name: "grilled steak"},
			{WineID: CatenaMalbec, Name: "empanadas"},
			{WineID: MugaReserva, Name: "roast lamb"},
			{WineID: MugaReserva, Name: "chorizo"},
			{WineID: CloudyBaySauvBlanc, Name: "oysters"},
			{WineID: CloudyBaySauvBlanc, Name: "goat cheese"},
			{WineID: UnratedRose, Name: "steak tartare"},
			{WineID: HouseRed, Name: "pizza"},
		},
		User: model.User{ID: 1, Username: "sommelier", Email: "sommelier@example.com"},
	}

	for _, rows := range []interface{}{&c.Vineyards, &c.Wines, &c.Pairings, &c.User} {
		if err := db.Create(rows).Error; err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}
	}
	return c
}

func IntPtr(v int) *int           { return &v }
func Int64Ptr(v int64) *int64     { return &v }
func FloatPtr(v float64) *float64 { return &v }
