package offers

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kampusgig/backend/internal/apperr"
	"github.com/kampusgig/backend/internal/models"
	"github.com/kampusgig/backend/internal/notify"
	"github.com/kampusgig/backend/internal/services/wallet"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Gig{}, &models.Offer{},
		&models.Engagement{}, &models.Wallet{}, &models.LedgerTransaction{},
	))
	return db
}

func newService(db *gorm.DB) *Service {
	return NewService(db, wallet.NewService(db), notify.Noop{})
}

func seedGig(t *testing.T, db *gorm.DB, budget int64) (*models.User, *models.Gig) {
	t.Helper()
	owner := models.User{Name: "Client", Email: uuid.NewString() + "@test.local", Password: "x", Role: models.RoleClient}
	require.NoError(t, db.Create(&owner).Error)

	gig := models.Gig{
		OwnerID: owner.ID,
		Title:   "Desain poster seminar",
		Budget:  budget,
		Status:  models.GigStatusOpen,
	}
	require.NoError(t, db.Create(&gig).Error)
	return &owner, &gig
}

func seedStudent(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := models.User{Name: "Student", Email: uuid.NewString() + "@test.local", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func TestCreateApplicationInheritsBudget(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	_, gig := seedGig(t, db, 150000)
	student := seedStudent(t, db)

	offer, err := svc.Create(student.ID, gig.ID, ApplicationPolicy, CreateInput{Message: "Saya tertarik"})
	require.NoError(t, err)
	assert.Equal(t, models.OfferVariantApplication, offer.Variant)
	assert.Equal(t, models.OfferStatusPending, offer.Status)
	assert.Equal(t, int64(150000), offer.Amount)
}

func TestCreateProposalRequiresAmount(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	_, gig := seedGig(t, db, 0)
	student := seedStudent(t, db)

	_, err := svc.Create(student.ID, gig.ID, ProposalPolicy, CreateInput{Message: "Bisa saya kerjakan"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	offer, err := svc.Create(student.ID, gig.ID, ProposalPolicy, CreateInput{Amount: 75000, DeliveryDays: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(75000), offer.Amount)
}

func TestCreateRejectsOwnGig(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	owner, gig := seedGig(t, db, 50000)

	_, err := svc.Create(owner.ID, gig.ID, ApplicationPolicy, CreateInput{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateDuplicateOffer(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	_, gig := seedGig(t, db, 50000)
	student := seedStudent(t, db)

	_, err := svc.Create(student.ID, gig.ID, ApplicationPolicy, CreateInput{})
	require.NoError(t, err)

	_, err = svc.Create(student.ID, gig.ID, ApplicationPolicy, CreateInput{})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateOnClosedGig(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	_, gig := seedGig(t, db, 50000)
	student := seedStudent(t, db)

	require.NoError(t, db.Model(gig).Update("status", models.GigStatusClosed).Error)

	_, err := svc.Create(student.ID, gig.ID, ApplicationPolicy, CreateInput{})
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestAcceptApplicationStartsActiveUnfunded(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	owner, gig := seedGig(t, db, 120000)
	student := seedStudent(t, db)

	offer, err := svc.Create(student.ID, gig.ID, ApplicationPolicy, CreateInput{})
	require.NoError(t, err)

	eng, err := svc.Accept(owner.ID, offer.ID, AcceptTerms{})
	require.NoError(t, err)
	assert.Equal(t, models.EngagementVariantContract, eng.Variant)
	assert.Equal(t, models.EngagementStatusActive, eng.Status)
	assert.Equal(t, int64(120000), eng.Amount)

	// contract variant holds nothing until the deposit
	var holds int64
	require.NoError(t, db.Model(&models.LedgerTransaction{}).Count(&holds).Error)
	assert.Equal(t, int64(0), holds)

	var fresh models.Gig
	require.NoError(t, db.First(&fresh, "id = ?", gig.ID).Error)
	assert.Equal(t, models.GigStatusInProgress, fresh.Status)
}

func TestAcceptProposalFundsImmediately(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	owner, gig := seedGig(t, db, 0)
	student := seedStudent(t, db)

	offer, err := svc.Create(student.ID, gig.ID, ProposalPolicy, CreateInput{Amount: 90000, DeliveryDays: 5})
	require.NoError(t, err)

	eng, err := svc.Accept(owner.ID, offer.ID, AcceptTerms{})
	require.NoError(t, err)
	assert.Equal(t, models.EngagementVariantOrder, eng.Variant)
	assert.Equal(t, models.EngagementStatusFunded, eng.Status)
	assert.Equal(t, int64(90000), eng.Amount)

	sum, err := wallet.NewService(db).GetSummary(student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), sum.Holds)
	assert.Equal(t, int64(0), sum.Balance)
}

func TestAcceptClosesCompetingOffers(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	owner, gig := seedGig(t, db, 60000)
	winner := seedStudent(t, db)
	loser := seedStudent(t, db)

	winning, err := svc.Create(winner.ID, gig.ID, ApplicationPolicy, CreateInput{})
	require.NoError(t, err)
	losing, err := svc.Create(loser.ID, gig.ID, ApplicationPolicy, CreateInput{})
	require.NoError(t, err)

	_, err = svc.Accept(owner.ID, winning.ID, AcceptTerms{})
	require.NoError(t, err)

	var fresh models.Offer
	require.NoError(t, db.First(&fresh, "id = ?", winning.ID).Error)
	assert.Equal(t, models.OfferStatusHired, fresh.Status)
	var freshLosing models.Offer
	require.NoError(t, db.First(&freshLosing, "id = ?", losing.ID).Error)
	assert.Equal(t, models.OfferStatusClosed, freshLosing.Status)
}

func TestAcceptTwiceCreatesOneEngagement(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	owner, gig := seedGig(t, db, 0)
	student := seedStudent(t, db)

	offer, err := svc.Create(student.ID, gig.ID, ProposalPolicy, CreateInput{Amount: 40000, DeliveryDays: 2})
	require.NoError(t, err)

	_, err = svc.Accept(owner.ID, offer.ID, AcceptTerms{})
	require.NoError(t, err)

	_, err = svc.Accept(owner.ID, offer.ID, AcceptTerms{})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	var engagements int64
	require.NoError(t, db.Model(&models.Engagement{}).Where("offer_id = ?", offer.ID).Count(&engagements).Error)
	assert.Equal(t, int64(1), engagements)

	var holds int64
	require.NoError(t, db.Model(&models.LedgerTransaction{}).
		Where("kind = ?", models.LedgerKindHold).Count(&holds).Error)
	assert.Equal(t, int64(1), holds)
}

func TestAcceptRequiresGigOwner(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	_, gig := seedGig(t, db, 50000)
	student := seedStudent(t, db)
	stranger := seedStudent(t, db)

	offer, err := svc.Create(student.ID, gig.ID, ApplicationPolicy, CreateInput{})
	require.NoError(t, err)

	_, err = svc.Accept(stranger.ID, offer.ID, AcceptTerms{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestRejectOffer(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	owner, gig := seedGig(t, db, 50000)
	student := seedStudent(t, db)

	offer, err := svc.Create(student.ID, gig.ID, ApplicationPolicy, CreateInput{})
	require.NoError(t, err)

	rejected, err := svc.Reject(owner.ID, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusRejected, rejected.Status)

	// a dead offer cannot be accepted afterwards
	_, err = svc.Accept(owner.ID, offer.ID, AcceptTerms{})
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestWithdrawOffer(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	_, gig := seedGig(t, db, 50000)
	student := seedStudent(t, db)
	stranger := seedStudent(t, db)

	offer, err := svc.Create(student.ID, gig.ID, ApplicationPolicy, CreateInput{})
	require.NoError(t, err)

	_, err = svc.Withdraw(stranger.ID, offer.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	withdrawn, err := svc.Withdraw(student.ID, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusWithdrawn, withdrawn.Status)
}

func TestListByGigOwnerOnly(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)
	owner, gig := seedGig(t, db, 50000)
	student := seedStudent(t, db)

	_, err := svc.Create(student.ID, gig.ID, ApplicationPolicy, CreateInput{})
	require.NoError(t, err)

	_, err = svc.ListByGig(student.ID, gig.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	out, err := svc.ListByGig(owner.ID, gig.ID)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
