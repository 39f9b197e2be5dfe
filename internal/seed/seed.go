// Package seed loads the illustrative fixture: two users, one event, two
// merch items, one registration, one order with two lines, one review.
// Integration tests use these rows as literal expected values.
package seed

import (
	"time"

	"gorm.io/gorm"

	"github.com/campushub/campus_hub/internal/hash"
	"github.com/campushub/campus_hub/internal/models"
)

// Load is idempotent: a database that already has users is left alone.
func Load(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		adminHash, err := hash.HashPassword("admin_password")
		if err != nil {
			return err
		}
		studentHash, err := hash.HashPassword("student_password")
		if err != nil {
			return err
		}

		admin := models.User{
			Email:        "admin@campus.edu",
			PasswordHash: adminHash,
			Role:         models.RoleAdmin,
		}
		student := models.User{
			Email:        "sasha@campus.edu",
			PasswordHash: studentHash,
			Role:         models.RoleStudent,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		if err := tx.Create(&student).Error; err != nil {
			return err
		}

		starts := time.Date(2026, time.September, 12, 18, 0, 0, 0, time.UTC)
		ends := starts.Add(3 * time.Hour)
		capacity := 120
		event := models.Event{
			Title:       "Autumn Welcome Fair",
			Description: "Opening fair for the autumn semester",
			Location:    "Main Quad",
			StartsAt:    starts,
			EndsAt:      &ends,
			Capacity:    &capacity,
			CreatedBy:   &admin.ID,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		hoodie := models.Merch{
			Name:        "Campus Hoodie",
			Description: "Embroidered crest hoodie",
			PriceCents:  3999,
			StockQty:    50,
			IsActive:    true,
			EventID:     &event.ID,
		}
		mug := models.Merch{
			Name:        "Campus Mug",
			Description: "Ceramic mug with the fair logo",
			PriceCents:  899,
			StockQty:    200,
			IsActive:    true,
			EventID:     &event.ID,
		}
		if err := tx.Create(&hoodie).Error; err != nil {
			return err
		}
		if err := tx.Create(&mug).Error; err != nil {
			return err
		}

		reg := models.Registration{
			UserID:  student.ID,
			EventID: event.ID,
			Status:  models.RegistrationRegistered,
		}
		if err := tx.Create(&reg).Error; err != nil {
			return err
		}

		order := models.Order{
			UserID:     student.ID,
			Status:     models.OrderPaid,
			TotalCents: 3999 + 899,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		items := []models.OrderItem{
			{OrderID: order.ID, MerchID: hoodie.ID, Quantity: 1, UnitPriceCents: 3999},
			{OrderID: order.ID, MerchID: mug.ID, Quantity: 1, UnitPriceCents: 899},
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		review := models.Review{
			UserID:  student.ID,
			EventID: &event.ID,
			Rating:  5,
			Comment: "Great fair, the hoodie line moved fast",
		}
		return tx.Create(&review).Error
	})
}
