package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/pageza/vinoteca/backend/config"
	"github.com/pageza/vinoteca/backend/internal/database"
	"github.com/pageza/vinoteca/backend/internal/logger"
	"github.com/pageza/vinoteca/backend/internal/model"
	"github.com/pageza/vinoteca/backend/internal/service"
	"github.com/pageza/vinoteca/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedWine struct {
	name           string
	classification string
	grape          string
	year           int
	price          float64
	rating         float64
	vineyard       string
	pairings       []string
}

var vineyards = []model.Vineyard{
	{Name: "Catena Zapata", Region: "Mendoza", Country: "Argentina", Appellation: "Mendoza"},
	{Name: "Bodegas Muga", Region: "Rioja", Country: "Spain", Appellation: "Rioja DOCa"},
	{Name: "Cloudy Bay", Region: "Marlborough", Country: "New Zealand", Appellation: "Marlborough"},
	{Name: "Château Margaux", Region: "Bordeaux", Country: "France", Appellation: "Margaux AOC"},
	{Name: "Antinori", Region: "Tuscany", Country: "Italy", Appellation: "Chianti Classico DOCG"},
	{Name: "Dr. Loosen", Region: "Mosel", Country: "Germany", Appellation: "Mosel"},
	{Name: "Ridge Vineyards", Region: "California", Country: "United States", Appellation: "Santa Cruz Mountains"},
	{Name: "Penfolds", Region: "South Australia", Country: "Australia", Appellation: "Barossa Valley"},
}

var wines = []seedWine{
	{"Catena Malbec", "Red", "Malbec", 2019, 25, 4.5, "Catena Zapata", []string{"grilled steak", "empanadas", "barbecue"}},
	{"Muga Reserva", "Red", "Tempranillo", 2018, 30, 4.7, "Bodegas Muga", []string{"roast lamb", "chorizo", "manchego"}},
	{"Cloudy Bay Sauvignon Blanc", "White", "Sauvignon Blanc", 2022, 28, 4.2, "Cloudy Bay", []string{"oysters", "goat cheese", "asparagus"}},
	{"Pavillon Rouge du Château Margaux", "Red", "Cabernet Sauvignon", 2016, 180, 4.8, "Château Margaux", []string{"beef wellington", "duck confit"}},
	{"Peppoli Chianti Classico", "Red", "Sangiovese", 2020, 22, 4.1, "Antinori", []string{"pizza", "tomato pasta", "lasagna"}},
	{"Dr. L Riesling", "White", "Riesling", 2021, 14, 4.0, "Dr. Loosen", []string{"thai curry", "sushi", "spicy food"}},
	{"Ridge Geyserville", "Red", "Zinfandel", 2020, 45, 4.6, "Ridge Vineyards", []string{"barbecue ribs", "burgers"}},
	{"Penfolds Bin 28 Shiraz", "Red", "Shiraz", 2019, 40, 4.4, "Penfolds", []string{"grilled steak", "lamb chops", "game"}},
	{"Muga Rosado", "Rosé", "Garnacha", 2022, 15, 0, "Bodegas Muga", []string{"paella", "salads"}},
}

func main() {
	withUser := flag.String("user", "", "Also create this username for cellar testing")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	var count int64
	if err := db.Model(&model.Wine{}).Count(&count).Error; err != nil {
		log.Fatal("failed to count wines", zap.Error(err))
	}
	if count > 0 {
		log.Info("catalog already seeded", zap.Int64("wines", count))
	} else if err := seedCatalog(db); err != nil {
		log.Fatal("failed to seed catalog", zap.Error(err))
	} else {
		log.Info("seeded catalog", zap.Int("vineyards", len(vineyards)), zap.Int("wines", len(wines)))
	}

	if *withUser != "" {
		user := model.User{Username: *withUser, Email: *withUser + "@example.com"}
		if err := db.Where(model.User{Username: user.Username}).FirstOrCreate(&user).Error; err != nil {
			log.Fatal("failed to create user", zap.Error(err))
		}
		log.Info("user ready", zap.String("username", user.Username), zap.Int64("user_id", user.ID))

		if err := seedCellar(context.Background(), db, user.Username); err != nil {
			log.Fatal("failed to seed cellar", zap.Error(err))
		}
	}
}

// seedCellar saves the best rated wine to the user's cellar with a short review.
func seedCellar(ctx context.Context, db *gorm.DB, username string) error {
	var best model.Wine
	if err := db.WithContext(ctx).Where("rating IS NOT NULL").Order("rating DESC").First(&best).Error; err != nil {
		return fmt.Errorf("failed to find a wine: %w", err)
	}

	rating := 9.0
	_, err := service.NewCellarService(db).Add(ctx, types.AddToCellarRequest{
		Username: username,
		WineID:   best.ID,
		Rating:   &rating,
		Review:   "Opened for a birthday dinner. Still tight, give it another few years.",
	})
	if errors.Is(err, service.ErrCellarEntryExists) {
		return nil
	}
	return err
}

// seedCatalog inserts everything in one transaction. A zero rating leaves the wine
// unrated, so it never shows up in searches.
func seedCatalog(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		byName := make(map[string]int64, len(vineyards))
		for i := range vineyards {
			if err := tx.Create(&vineyards[i]).Error; err != nil {
				return fmt.Errorf("vineyard %s: %w", vineyards[i].Name, err)
			}
			byName[vineyards[i].Name] = vineyards[i].ID
		}

		for _, w := range wines {
			wine := model.Wine{
				Name:           w.name,
				Classification: w.classification,
				Grape:          w.grape,
				Year:           &w.year,
				Price:          &w.price,
			}
			if w.rating > 0 {
				wine.Rating = &w.rating
			}
			if id, ok := byName[w.vineyard]; ok {
				wine.VineyardID = &id
			}
			if err := tx.Create(&wine).Error; err != nil {
				return fmt.Errorf("wine %s: %w", w.name, err)
			}

			for _, p := range w.pairings {
				if err := tx.Create(&model.FoodPairing{WineID: wine.ID, Name: p}).Error; err != nil {
					return fmt.Errorf("food pairing %s for %s: %w", p, w.name, err)
				}
			}
		}
		return nil
	})
}
