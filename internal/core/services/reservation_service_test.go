package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portssvc "github.com/kelderman/wine_cellar_app/internal/core/ports/services"
	"github.com/kelderman/wine_cellar_app/internal/core/services"
)

// --- Test Suite Setup ---
type ReservationServiceTestSuite struct {
	suite.Suite
	mockStockRepo *MockStockRepository
	mockOrderRepo *MockOrderRepository
	service       portssvc.ReservationSvc
	tx            fakeTx
	orderID       string
	receiptID     string
	locationID    string
	userID        string
	key           domain.StockKey
}

func (suite *ReservationServiceTestSuite) SetupTest() {
	suite.mockStockRepo = new(MockStockRepository)
	suite.mockOrderRepo = new(MockOrderRepository)
	suite.service = services.NewReservationService(suite.mockStockRepo, suite.mockOrderRepo)

	suite.tx = fakeTx{}
	suite.orderID = uuid.NewString()
	suite.receiptID = uuid.NewString()
	suite.locationID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.key = domain.StockKey{ReceiptID: suite.receiptID, LocationID: suite.locationID}
}

func (suite *ReservationServiceTestSuite) line(quantity int64, status domain.OrderLineStatus) domain.OrderLine {
	return domain.OrderLine{
		LineID:     uuid.NewString(),
		OrderID:    suite.orderID,
		ReceiptID:  suite.receiptID,
		LocationID: suite.locationID,
		Quantity:   quantity,
		Status:     status,
	}
}

func (suite *ReservationServiceTestSuite) stockRow(quantity, reserved int64) domain.CellarStock {
	return domain.CellarStock{
		StockID:    uuid.NewString(),
		ReceiptID:  suite.receiptID,
		LocationID: suite.locationID,
		Quantity:   quantity,
		Reserved:   reserved,
	}
}

// --- Test Cases ---

func (suite *ReservationServiceTestSuite) TestValidateReservation_Success() {
	ctx := context.Background()
	newLine := suite.line(3, domain.LineOpen)
	row := suite.stockRow(5, 1)

	suite.mockStockRepo.On("FindStockByKey", ctx, suite.key).Return(&row, nil).Once()

	err := suite.service.ValidateReservation(ctx, &newLine, nil)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *ReservationServiceTestSuite) TestValidateReservation_OverReservation() {
	ctx := context.Background()
	newLine := suite.line(6, domain.LineOpen)
	row := suite.stockRow(5, 0)

	suite.mockStockRepo.On("FindStockByKey", ctx, suite.key).Return(&row, nil).Once()

	err := suite.service.ValidateReservation(ctx, &newLine, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	var overReservation *apperrors.OverReservationError
	suite.Require().ErrorAs(err, &overReservation)
	suite.Equal(int64(6), overReservation.Requested)
	suite.Equal(int64(5), overReservation.OnHand)
}

func (suite *ReservationServiceTestSuite) TestValidateReservation_NoStockRow() {
	ctx := context.Background()
	newLine := suite.line(2, domain.LineOpen)

	suite.mockStockRepo.On("FindStockByKey", ctx, suite.key).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.ValidateReservation(ctx, &newLine, nil)

	suite.Require().Error(err)
	var overReservation *apperrors.OverReservationError
	suite.Require().ErrorAs(err, &overReservation)
	suite.Equal(int64(2), overReservation.Requested)
	suite.Zero(overReservation.OnHand)
}

func (suite *ReservationServiceTestSuite) TestValidateReservation_EmptyChange() {
	err := suite.service.ValidateReservation(context.Background(), nil, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEmptyLineChange)
}

func (suite *ReservationServiceTestSuite) TestSubmitOrderLine_Reserve() {
	ctx := context.Background()
	newLine := suite.line(3, domain.LineOpen)
	row := suite.stockRow(5, 1)

	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{suite.key}).
		Return(map[domain.StockKey]domain.CellarStock{suite.key: row}, nil).Once()
	suite.mockOrderRepo.On("SaveOrderLineInTx", ctx, suite.tx, newLine).Return(nil).Once()
	suite.mockStockRepo.On("UpsertStockInTx", ctx, suite.tx, mock.MatchedBy(func(s domain.CellarStock) bool {
		return s.StockID == row.StockID && s.Quantity == 5 && s.Reserved == 4
	})).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	err := suite.service.SubmitOrderLine(ctx, &newLine, nil, suite.userID)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertExpectations(suite.T())
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func (suite *ReservationServiceTestSuite) TestSubmitOrderLine_OverReservationRollsBack() {
	ctx := context.Background()
	newLine := suite.line(4, domain.LineOpen)
	row := suite.stockRow(5, 3)

	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{suite.key}).
		Return(map[domain.StockKey]domain.CellarStock{suite.key: row}, nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(nil)

	err := suite.service.SubmitOrderLine(ctx, &newLine, nil, suite.userID)

	suite.Require().Error(err)
	var overReservation *apperrors.OverReservationError
	suite.Require().ErrorAs(err, &overReservation)
	suite.Equal(int64(7), overReservation.Requested)
	suite.Equal(int64(5), overReservation.OnHand)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "SaveOrderLineInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *ReservationServiceTestSuite) TestSubmitOrderLine_ReleaseOnVoid() {
	ctx := context.Background()
	oldLine := suite.line(2, domain.LineOpen)
	voided := oldLine
	voided.Status = domain.LineVoided
	row := suite.stockRow(5, 2)

	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{suite.key}).
		Return(map[domain.StockKey]domain.CellarStock{suite.key: row}, nil).Once()
	suite.mockOrderRepo.On("UpdateOrderLineInTx", ctx, suite.tx, voided).Return(nil).Once()
	suite.mockStockRepo.On("UpsertStockInTx", ctx, suite.tx, mock.MatchedBy(func(s domain.CellarStock) bool {
		return s.Reserved == 0 && s.Quantity == 5
	})).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	err := suite.service.SubmitOrderLine(ctx, &voided, &oldLine, suite.userID)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertExpectations(suite.T())
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func (suite *ReservationServiceTestSuite) TestSubmitOrderLine_DeleteReleasesAndRemovesEmptyRow() {
	ctx := context.Background()
	oldLine := suite.line(2, domain.LineOpen)
	row := suite.stockRow(0, 2)

	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{suite.key}).
		Return(map[domain.StockKey]domain.CellarStock{suite.key: row}, nil).Once()
	suite.mockOrderRepo.On("DeleteOrderLineInTx", ctx, suite.tx, oldLine.LineID).Return(nil).Once()
	suite.mockStockRepo.On("DeleteStockInTx", ctx, suite.tx, row.StockID).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	err := suite.service.SubmitOrderLine(ctx, nil, &oldLine, suite.userID)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "UpsertStockInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *ReservationServiceTestSuite) TestSubmitOrderLine_ReleaseClampsNegativeReserved() {
	ctx := context.Background()
	oldLine := suite.line(3, domain.LineOpen)
	// The projection drifted: less is reserved than the line claims.
	row := suite.stockRow(5, 1)

	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{suite.key}).
		Return(map[domain.StockKey]domain.CellarStock{suite.key: row}, nil).Once()
	suite.mockOrderRepo.On("DeleteOrderLineInTx", ctx, suite.tx, oldLine.LineID).Return(nil).Once()
	suite.mockStockRepo.On("UpsertStockInTx", ctx, suite.tx, mock.MatchedBy(func(s domain.CellarStock) bool {
		return s.Reserved == 0 && s.Quantity == 5
	})).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	err := suite.service.SubmitOrderLine(ctx, nil, &oldLine, suite.userID)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *ReservationServiceTestSuite) TestSubmitOrderLine_ReleaseAgainstMissingRow() {
	ctx := context.Background()
	oldLine := suite.line(2, domain.LineOpen)

	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{suite.key}).
		Return(map[domain.StockKey]domain.CellarStock{}, nil).Once()
	suite.mockOrderRepo.On("DeleteOrderLineInTx", ctx, suite.tx, oldLine.LineID).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	err := suite.service.SubmitOrderLine(ctx, nil, &oldLine, suite.userID)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "UpsertStockInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func TestReservationService(t *testing.T) {
	suite.Run(t, new(ReservationServiceTestSuite))
}
