package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
	portssvc "github.com/kelderman/wine_cellar_app/internal/core/ports/services"
	"github.com/kelderman/wine_cellar_app/internal/core/services"
)

// --- Mock AuditRepository ---
type MockAuditRepository struct {
	mock.Mock
}

// Ensure MockAuditRepository implements portsrepo.AuditRepository
var _ portsrepo.AuditRepository = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) AggregateByLocation(ctx context.Context, locationID string) ([]domain.StockAuditRow, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockAuditRow), args.Error(1)
}

func (m *MockAuditRepository) AggregateByReceipt(ctx context.Context, receiptID string) ([]domain.StockAuditRow, error) {
	args := m.Called(ctx, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockAuditRow), args.Error(1)
}

func (m *MockAuditRepository) AggregateAll(ctx context.Context) ([]domain.StockAuditRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockAuditRow), args.Error(1)
}

// --- Test Suite Setup ---
type AuditServiceTestSuite struct {
	suite.Suite
	mockAuditRepo *MockAuditRepository
	service       portssvc.AuditSvc
	locationID    string
	receiptID     string
}

func (suite *AuditServiceTestSuite) SetupTest() {
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewAuditService(suite.mockAuditRepo)

	suite.locationID = uuid.NewString()
	suite.receiptID = uuid.NewString()
}

func (suite *AuditServiceTestSuite) cleanRow() domain.StockAuditRow {
	return domain.StockAuditRow{
		ReceiptID:  suite.receiptID,
		LocationID: suite.locationID,
		OnHand:     5,
		TotalIn:    8,
		TotalOut:   3,
		Reserved:   2,
		OpenDemand: 2,
	}
}

// --- Test Cases ---

func (suite *AuditServiceTestSuite) TestCheckAll_CleanProjection() {
	ctx := context.Background()
	rows := []domain.StockAuditRow{suite.cleanRow(), suite.cleanRow()}

	suite.mockAuditRepo.On("AggregateAll", ctx).Return(rows, nil).Once()

	report, err := suite.service.CheckAll(ctx)

	suite.Require().NoError(err)
	suite.Require().NotNil(report)
	suite.Equal("all", report.Scope)
	suite.False(report.CheckedAt.IsZero())
	suite.Zero(report.DriftCount)
	for _, row := range report.Rows {
		suite.True(row.Correct)
	}
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *AuditServiceTestSuite) TestCheckLocation_DetectsDrift() {
	ctx := context.Background()
	quantityDrift := suite.cleanRow()
	quantityDrift.OnHand = 4 // ledger says 5
	reservationDrift := suite.cleanRow()
	reservationDrift.BinID = "B2"
	reservationDrift.OpenDemand = 3 // projection reserves 2
	rows := []domain.StockAuditRow{suite.cleanRow(), quantityDrift, reservationDrift}

	suite.mockAuditRepo.On("AggregateByLocation", ctx, suite.locationID).Return(rows, nil).Once()

	report, err := suite.service.CheckLocation(ctx, suite.locationID)

	suite.Require().NoError(err)
	suite.Require().NotNil(report)
	suite.Equal(fmt.Sprintf("location:%s", suite.locationID), report.Scope)
	suite.Equal(2, report.DriftCount)
	suite.Require().Len(report.Rows, 3)
	suite.True(report.Rows[0].Correct)
	suite.False(report.Rows[1].Correct)
	suite.False(report.Rows[2].Correct)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *AuditServiceTestSuite) TestCheckReceipt_LostProjectionRow() {
	ctx := context.Background()
	// The ledger knows bottles the projection lost entirely.
	lost := domain.StockAuditRow{
		ReceiptID:  suite.receiptID,
		LocationID: suite.locationID,
		OnHand:     0,
		TotalIn:    2,
		TotalOut:   0,
	}

	suite.mockAuditRepo.On("AggregateByReceipt", ctx, suite.receiptID).
		Return([]domain.StockAuditRow{lost}, nil).Once()

	report, err := suite.service.CheckReceipt(ctx, suite.receiptID)

	suite.Require().NoError(err)
	suite.Equal(fmt.Sprintf("receipt:%s", suite.receiptID), report.Scope)
	suite.Equal(1, report.DriftCount)
	suite.False(report.Rows[0].Correct)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *AuditServiceTestSuite) TestCheckAll_RepoError() {
	ctx := context.Background()
	repoErr := assert.AnError

	suite.mockAuditRepo.On("AggregateAll", ctx).Return(nil, repoErr).Once()

	report, err := suite.service.CheckAll(ctx)

	suite.Require().Error(err)
	suite.Nil(report)
	suite.ErrorIs(err, repoErr)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func TestAuditService(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}
