package main

import (
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"

	"paintmarket/internal/database"
	"paintmarket/internal/domain"
	"paintmarket/internal/modules/settings"
)

// Seeds a local database with an admin, demo accounts and a couple of
// open leads. Destructive: wipes existing rows first.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "paintmarket.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM messages")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM bids")
	db.Exec("DELETE FROM lead_claims")
	db.Exec("DELETE FROM payment_methods")
	db.Exec("DELETE FROM leads")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")

	admin := domain.User{
		Email:        "admin@paintmarket.test",
		PasswordHash: hash("admin123"),
		Role:         domain.RoleAdmin,
		Name:         "Site Admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal(err)
	}

	customer := domain.User{
		Email:        "customer@paintmarket.test",
		PasswordHash: hash("customer123"),
		Role:         domain.RoleCustomer,
		Name:         "Sarah Holmes",
		Phone:        "+44 7700 900123",
	}
	if err := db.Create(&customer).Error; err != nil {
		log.Fatal(err)
	}

	now := time.Now().UTC()
	painter := domain.User{
		Email:         "painter@paintmarket.test",
		PasswordHash:  hash("painter123"),
		Role:          domain.RolePainter,
		Name:          "Tom Briggs",
		Phone:         "+44 7700 900456",
		CompanyName:   "Briggs Decorating Ltd",
		PainterStatus: domain.PainterActive,
		VerifiedAt:    &now,
	}
	if err := db.Create(&painter).Error; err != nil {
		log.Fatal(err)
	}

	pendingPainter := domain.User{
		Email:         "newpainter@paintmarket.test",
		PasswordHash:  hash("painter123"),
		Role:          domain.RolePainter,
		Name:          "Ana Kovac",
		CompanyName:   "Kovac & Sons",
		PainterStatus: domain.PainterPending,
	}
	if err := db.Create(&pendingPainter).Error; err != nil {
		log.Fatal(err)
	}

	log.Println("Creating leads...")
	defaults := settings.Defaults()
	leads := []domain.Lead{
		{
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			CustomerEmail: customer.Email,
			CustomerPhone: customer.Phone,
			Title:         "Repaint three-bedroom house interior",
			Description:   "Full interior repaint: walls and ceilings in all rooms, minor filler work on the hallway.",
			Location:      "14 Elm Road, Manchester",
			Status:        domain.LeadOpen,
			Price:         defaults.LeadPrice,
			MaxPayments:   defaults.MaxPaymentsPerLead,
			PaymentActive: true,
		},
		{
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			CustomerEmail: customer.Email,
			CustomerPhone: customer.Phone,
			Title:         "Exterior front door and window frames",
			Description:   "Sand and repaint the front door plus four window frames. South-facing, weathered.",
			Location:      "2 Ash Grove, Leeds",
			Status:        domain.LeadOpen,
			Price:         defaults.LeadPrice,
			MaxPayments:   defaults.MaxPaymentsPerLead,
			PaymentActive: true,
		},
	}
	for i := range leads {
		if err := db.Create(&leads[i]).Error; err != nil {
			log.Fatal(err)
		}
	}

	log.Println("Writing default settings...")
	defaultSettings := map[string]string{
		settings.KeyLeadPrice:          "15.00",
		settings.KeyMaxPaymentsPerLead: "3",
		settings.KeyBidMinAmount:       "50.00",
		settings.KeyBidMaxAmount:       "100000.00",
		settings.KeyBidMessageMinLen:   "10",
		settings.KeyBidMessageMaxLen:   "2000",
		settings.KeyPaymentsEnabled:    "true",
		settings.KeyNotifyEnabled:      "true",
	}
	for key, value := range defaultSettings {
		row := domain.Setting{Key: key, Value: value}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&row).Error
		if err != nil {
			log.Fatal(err)
		}
	}

	log.Println("Seed complete.")
	log.Println("  admin@paintmarket.test / admin123")
	log.Println("  customer@paintmarket.test / customer123")
	log.Println("  painter@paintmarket.test / painter123 (active)")
	log.Println("  newpainter@paintmarket.test / painter123 (pending approval)")
}

func hash(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}
	return string(h)
}
