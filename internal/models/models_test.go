package models

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(All()...); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func fixtureUser(t *testing.T, db *gorm.DB, email string) *User {
	t.Helper()
	u := User{Email: email, PasswordHash: "x", Role: RoleStudent}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func fixtureEvent(t *testing.T, db *gorm.DB, createdBy *uint) *Event {
	t.Helper()
	e := Event{Title: "Autumn Welcome Fair", StartsAt: time.Now().Add(time.Hour), CreatedBy: createdBy}
	require.NoError(t, db.Create(&e).Error)
	return &e
}

func fixtureMerch(t *testing.T, db *gorm.DB, eventID *uint) *Merch {
	t.Helper()
	m := Merch{Name: "Campus Hoodie", PriceCents: 3999, StockQty: 10, IsActive: true, EventID: eventID}
	require.NoError(t, db.Create(&m).Error)
	return &m
}

func TestUserEmailUnique(t *testing.T) {
	db := testDB(t)
	fixtureUser(t, db, "sasha@campus.edu")

	dup := User{Email: "sasha@campus.edu", PasswordHash: "y", Role: RoleStudent}
	require.Error(t, db.Create(&dup).Error)
}

func TestRegistrationUserEventUnique(t *testing.T) {
	db := testDB(t)
	u := fixtureUser(t, db, "sasha@campus.edu")
	e := fixtureEvent(t, db, nil)

	first := Registration{UserID: u.ID, EventID: e.ID, Status: RegistrationRegistered}
	require.NoError(t, db.Create(&first).Error)

	second := Registration{UserID: u.ID, EventID: e.ID, Status: RegistrationRegistered}
	require.Error(t, db.Create(&second).Error)

	// still exactly one row for the pair
	var count int64
	require.NoError(t, db.Model(&Registration{}).Where("user_id = ? AND event_id = ?", u.ID, e.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestFavoriteUserEventUnique(t *testing.T) {
	db := testDB(t)
	u := fixtureUser(t, db, "sasha@campus.edu")
	e := fixtureEvent(t, db, nil)

	require.NoError(t, db.Create(&Favorite{UserID: u.ID, EventID: e.ID}).Error)
	require.Error(t, db.Create(&Favorite{UserID: u.ID, EventID: e.ID}).Error)
}

func TestOrderItemOrderMerchUnique(t *testing.T) {
	db := testDB(t)
	u := fixtureUser(t, db, "sasha@campus.edu")
	m := fixtureMerch(t, db, nil)

	o := Order{UserID: u.ID, Status: OrderPending}
	require.NoError(t, db.Create(&o).Error)

	require.NoError(t, db.Create(&OrderItem{OrderID: o.ID, MerchID: m.ID, Quantity: 1, UnitPriceCents: 3999}).Error)
	require.Error(t, db.Create(&OrderItem{OrderID: o.ID, MerchID: m.ID, Quantity: 2, UnitPriceCents: 3999}).Error)

	// the correct operation is updating the existing row's quantity
	require.NoError(t, db.Model(&OrderItem{}).
		Where("order_id = ? AND merch_id = ?", o.ID, m.ID).
		Update("quantity", 3).Error)
}

func TestReviewRatingBounds(t *testing.T) {
	db := testDB(t)
	u := fixtureUser(t, db, "sasha@campus.edu")
	e := fixtureEvent(t, db, nil)

	for _, rating := range []int{0, 6} {
		r := Review{UserID: u.ID, EventID: &e.ID, Rating: rating}
		require.Error(t, db.Create(&r).Error, "rating %d must fail the check", rating)
	}
	for _, rating := range []int{1, 5} {
		r := Review{UserID: u.ID, EventID: &e.ID, Rating: rating}
		require.NoError(t, db.Create(&r).Error, "rating %d must pass the check", rating)
	}
}

func TestReviewNeedsTarget(t *testing.T) {
	db := testDB(t)
	u := fixtureUser(t, db, "sasha@campus.edu")

	r := Review{UserID: u.ID, Rating: 3}
	require.Error(t, db.Create(&r).Error)

	m := fixtureMerch(t, db, nil)
	ok := Review{UserID: u.ID, MerchID: &m.ID, Rating: 3}
	require.NoError(t, db.Create(&ok).Error)
}

func TestDeletingCreatorNullsEvent(t *testing.T) {
	db := testDB(t)
	u := fixtureUser(t, db, "admin@campus.edu")
	e := fixtureEvent(t, db, &u.ID)

	require.NoError(t, db.Delete(&User{}, u.ID).Error)

	var got Event
	require.NoError(t, db.First(&got, e.ID).Error)
	require.Nil(t, got.CreatedBy)
}

func TestDeletingEventCascades(t *testing.T) {
	db := testDB(t)
	u := fixtureUser(t, db, "sasha@campus.edu")
	e := fixtureEvent(t, db, nil)
	m := fixtureMerch(t, db, &e.ID)

	require.NoError(t, db.Create(&Registration{UserID: u.ID, EventID: e.ID, Status: RegistrationRegistered}).Error)
	require.NoError(t, db.Create(&Favorite{UserID: u.ID, EventID: e.ID}).Error)
	require.NoError(t, db.Create(&Review{UserID: u.ID, EventID: &e.ID, Rating: 4}).Error)

	require.NoError(t, db.Delete(&Event{}, e.ID).Error)

	var regs, favs, reviews int64
	require.NoError(t, db.Model(&Registration{}).Where("event_id = ?", e.ID).Count(&regs).Error)
	require.NoError(t, db.Model(&Favorite{}).Where("event_id = ?", e.ID).Count(&favs).Error)
	require.NoError(t, db.Model(&Review{}).Where("event_id = ?", e.ID).Count(&reviews).Error)
	require.Zero(t, regs)
	require.Zero(t, favs)
	require.Zero(t, reviews)

	// linked merch survives with the link nulled
	var gotMerch Merch
	require.NoError(t, db.First(&gotMerch, m.ID).Error)
	require.Nil(t, gotMerch.EventID)
}

func TestDeletingUserCascadesOrders(t *testing.T) {
	db := testDB(t)
	u := fixtureUser(t, db, "sasha@campus.edu")
	m := fixtureMerch(t, db, nil)

	o := Order{UserID: u.ID, Status: OrderPaid, TotalCents: 3999}
	require.NoError(t, db.Create(&o).Error)
	require.NoError(t, db.Create(&OrderItem{OrderID: o.ID, MerchID: m.ID, Quantity: 1, UnitPriceCents: 3999}).Error)

	require.NoError(t, db.Delete(&User{}, u.ID).Error)

	var orders, items int64
	require.NoError(t, db.Model(&Order{}).Where("user_id = ?", u.ID).Count(&orders).Error)
	require.NoError(t, db.Model(&OrderItem{}).Where("order_id = ?", o.ID).Count(&items).Error)
	require.Zero(t, orders)
	require.Zero(t, items)
}

func TestDeletingOrderCascadesItems(t *testing.T) {
	db := testDB(t)
	u := fixtureUser(t, db, "sasha@campus.edu")
	m := fixtureMerch(t, db, nil)

	o := Order{UserID: u.ID, Status: OrderPaid, TotalCents: 3999}
	require.NoError(t, db.Create(&o).Error)
	require.NoError(t, db.Create(&OrderItem{OrderID: o.ID, MerchID: m.ID, Quantity: 1, UnitPriceCents: 3999}).Error)

	require.NoError(t, db.Delete(&Order{}, o.ID).Error)

	var items int64
	require.NoError(t, db.Model(&OrderItem{}).Where("order_id = ?", o.ID).Count(&items).Error)
	require.Zero(t, items)
}

func TestOrderedMerchCannotBeDeleted(t *testing.T) {
	db := testDB(t)
	u := fixtureUser(t, db, "sasha@campus.edu")
	m := fixtureMerch(t, db, nil)

	o := Order{UserID: u.ID, Status: OrderPaid, TotalCents: 3999}
	require.NoError(t, db.Create(&o).Error)
	require.NoError(t, db.Create(&OrderItem{OrderID: o.ID, MerchID: m.ID, Quantity: 1, UnitPriceCents: 3999}).Error)

	require.Error(t, db.Delete(&Merch{}, m.ID).Error)

	var got Merch
	require.NoError(t, db.First(&got, m.ID).Error)
}

func TestReviewTargetValidate(t *testing.T) {
	require.ErrorIs(t, ReviewTarget{}.Validate(), ErrNoReviewTarget)

	id := uint(1)
	require.NoError(t, ReviewTarget{EventID: &id}.Validate())
	require.NoError(t, ReviewTarget{MerchID: &id}.Validate())
	require.NoError(t, ReviewTarget{EventID: &id, MerchID: &id}.Validate())
}
