package main

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/Wollie333/vilo-sub013/internal/model"
	"github.com/Wollie333/vilo-sub013/pkg/database"
	"github.com/Wollie333/vilo-sub013/pkg/policy"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Seeds a demo tenant with a standard cancellation policy and a couple of
// cancelled bookings to exercise the refund workflow locally.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	tenantId := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	log.Println("Seeding tenant configuration...")

	tiers := []policy.CancellationPolicyTier{
		{DaysBefore: 7, RefundPercentage: 100, Label: "Full refund"},
		{DaysBefore: 3, RefundPercentage: 50, Label: "Half refund"},
		{DaysBefore: 0, RefundPercentage: 0, Label: "No refund"},
	}
	policyJSON, err := json.Marshal(tiers)
	if err != nil {
		log.Fatalf("Error: failed to encode policy tiers: %v", err)
	}

	var existing model.TenantConfig
	if err := db.Where("tenant_id = ?", tenantId).First(&existing).Error; err == nil {
		log.Println("Tenant config already exists, skipping...")
	} else {
		cfg := model.TenantConfig{
			TenantID:             tenantId,
			CancellationPolicy:   policyJSON,
			GatewayTestSecretKey: "sk_test_seeded",
			GatewayLiveMode:      false,
		}
		if err := db.Create(&cfg).Error; err != nil {
			log.Fatalf("Error creating tenant config: %v", err)
		}
		log.Println("Created tenant config")
	}

	log.Println("Seeding cancelled bookings...")

	now := time.Now()
	cancelled := now.Add(-2 * time.Hour)
	bookings := []model.Booking{
		{
			TenantID:         tenantId,
			TotalAmount:      1200,
			Currency:         "EUR",
			CheckIn:          now.Add(10 * 24 * time.Hour),
			CheckOut:         now.Add(14 * 24 * time.Hour),
			PaymentMethod:    "card",
			PaymentReference: "txn_seed_full_refund",
			PaymentStatus:    "paid",
			CancelledAt:      &cancelled,
		},
		{
			TenantID:         tenantId,
			TotalAmount:      800,
			Currency:         "EUR",
			CheckIn:          now.Add(4 * 24 * time.Hour),
			CheckOut:         now.Add(6 * 24 * time.Hour),
			PaymentMethod:    "card",
			PaymentReference: "txn_seed_half_refund",
			PaymentStatus:    "paid",
			CancelledAt:      &cancelled,
		},
		{
			TenantID:      tenantId,
			TotalAmount:   500,
			Currency:      "EUR",
			CheckIn:       now.Add(5 * 24 * time.Hour),
			CheckOut:      now.Add(7 * 24 * time.Hour),
			PaymentMethod: "bank_transfer",
			PaymentStatus: "paid",
			CancelledAt:   &cancelled,
		},
	}

	for _, b := range bookings {
		var count int64
		db.Model(&model.Booking{}).
			Where("tenant_id = ? AND payment_reference = ? AND payment_reference <> ''", b.TenantID, b.PaymentReference).
			Count(&count)
		if count > 0 {
			log.Printf("Booking %s already seeded, skipping...", b.PaymentReference)
			continue
		}
		if err := db.Create(&b).Error; err != nil {
			log.Printf("Error creating booking: %v", err)
		} else {
			log.Printf("Created booking %s (%.2f %s)", b.ID, b.TotalAmount, b.Currency)
		}
	}

	log.Println("✅ Seeding completed")
}
