package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kelderman/wine_cellar_app/internal/apperrors"
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	portsrepo "github.com/kelderman/wine_cellar_app/internal/core/ports/repositories"
	portssvc "github.com/kelderman/wine_cellar_app/internal/core/ports/services"
	"github.com/kelderman/wine_cellar_app/internal/core/services"
	"github.com/kelderman/wine_cellar_app/internal/dto"
)

// --- Mock OrderRepository ---
type MockOrderRepository struct {
	mock.Mock
}

// Ensure MockOrderRepository implements portsrepo.OrderRepositoryWithTx
var _ portsrepo.OrderRepositoryWithTx = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindOrderWithLines(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, participantID *string, includeClosed bool) ([]domain.Order, error) {
	args := m.Called(ctx, participantID, includeClosed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindOrderLineByID(ctx context.Context, lineID string) (*domain.OrderLine, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderLine), args.Error(1)
}

func (m *MockOrderRepository) ListLinesByOrder(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderLine), args.Error(1)
}

func (m *MockOrderRepository) CountLines(ctx context.Context, orderID string) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SaveOrder(ctx context.Context, order domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateOrder(ctx context.Context, order domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteOrder(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveOrderLineInTx(ctx context.Context, tx pgx.Tx, line domain.OrderLine) error {
	args := m.Called(ctx, tx, line)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateOrderLineInTx(ctx context.Context, tx pgx.Tx, line domain.OrderLine) error {
	args := m.Called(ctx, tx, line)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteOrderLineInTx(ctx context.Context, tx pgx.Tx, lineID string) error {
	args := m.Called(ctx, tx, lineID)
	return args.Error(0)
}

func (m *MockOrderRepository) CountOpenLinesInTx(ctx context.Context, tx pgx.Tx, orderID string) (int64, error) {
	args := m.Called(ctx, tx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SetOrderClosedDateInTx(ctx context.Context, tx pgx.Tx, orderID string, closedDate *time.Time, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, orderID, closedDate, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockOrderRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockOrderRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockOrderRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock ReservationService ---
type MockReservationService struct {
	mock.Mock
}

var _ portssvc.ReservationSvc = (*MockReservationService)(nil)

func (m *MockReservationService) ValidateReservation(ctx context.Context, newLine, oldLine *domain.OrderLine) error {
	args := m.Called(ctx, newLine, oldLine)
	return args.Error(0)
}

func (m *MockReservationService) SubmitOrderLine(ctx context.Context, newLine, oldLine *domain.OrderLine, userID string) error {
	args := m.Called(ctx, newLine, oldLine, userID)
	return args.Error(0)
}

// --- Test Suite Setup ---
type OrderServiceTestSuite struct {
	suite.Suite
	mockOrderRepo      *MockOrderRepository
	mockStockRepo      *MockStockRepository
	mockReservationSvc *MockReservationService
	service            portssvc.OrderSvcFacade
	tx                 fakeTx
	orderID            string
	receiptID          string
	locationID         string
	participantID      string
	wineID             string
	userID             string
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.mockOrderRepo = new(MockOrderRepository)
	suite.mockStockRepo = new(MockStockRepository)
	suite.mockReservationSvc = new(MockReservationService)
	suite.service = services.NewOrderService(suite.mockOrderRepo, suite.mockStockRepo, suite.mockReservationSvc)

	suite.tx = fakeTx{}
	suite.orderID = uuid.NewString()
	suite.receiptID = uuid.NewString()
	suite.locationID = uuid.NewString()
	suite.participantID = uuid.NewString()
	suite.wineID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *OrderServiceTestSuite) order() *domain.Order {
	return &domain.Order{
		OrderID:       suite.orderID,
		ParticipantID: suite.participantID,
		LocationID:    suite.locationID,
		OrderDate:     time.Now().UTC(),
	}
}

func (suite *OrderServiceTestSuite) openLine(quantity int64) domain.OrderLine {
	return domain.OrderLine{
		LineID:     uuid.NewString(),
		OrderID:    suite.orderID,
		ReceiptID:  suite.receiptID,
		LocationID: suite.locationID,
		Quantity:   quantity,
		Status:     domain.LineOpen,
	}
}

// --- Test Cases ---

func (suite *OrderServiceTestSuite) TestCreateOrder_Success() {
	ctx := context.Background()
	req := dto.CreateOrderRequest{
		ParticipantID: suite.participantID,
		LocationID:    suite.locationID,
		Notes:         "Saturday tasting",
	}

	suite.mockOrderRepo.On("SaveOrder", ctx, mock.AnythingOfType("domain.Order")).Return(nil).Once()

	created, err := suite.service.CreateOrder(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.OrderID)
	suite.Equal(suite.participantID, created.ParticipantID)
	suite.False(created.OrderDate.IsZero())
	suite.Nil(created.ClosedDate)
	suite.Equal(suite.userID, created.CreatedBy)
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestAddLine_Success() {
	ctx := context.Background()
	req := dto.CreateOrderLineRequest{ReceiptID: suite.receiptID, Quantity: 3}

	suite.mockOrderRepo.On("FindOrderByID", ctx, suite.orderID).Return(suite.order(), nil).Twice()
	suite.mockReservationSvc.On("SubmitOrderLine", ctx, mock.MatchedBy(func(l *domain.OrderLine) bool {
		return l != nil && l.Status == domain.LineOpen && l.Quantity == 3 && l.LocationID == suite.locationID
	}), (*domain.OrderLine)(nil), suite.userID).Return(nil).Once()
	suite.mockOrderRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockOrderRepo.On("CountOpenLinesInTx", ctx, suite.tx, suite.orderID).Return(int64(1), nil).Once()
	suite.mockOrderRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockOrderRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	line, err := suite.service.AddLine(ctx, suite.orderID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(line)
	suite.NotEmpty(line.LineID)
	suite.Equal(suite.locationID, line.LocationID)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "SetOrderClosedDateInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockReservationSvc.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestAddLine_ReopensClosedOrder() {
	ctx := context.Background()
	closedAt := time.Now().UTC().Add(-time.Hour)
	order := suite.order()
	order.ClosedDate = &closedAt
	req := dto.CreateOrderLineRequest{ReceiptID: suite.receiptID, Quantity: 1}

	suite.mockOrderRepo.On("FindOrderByID", ctx, suite.orderID).Return(order, nil).Twice()
	suite.mockReservationSvc.On("SubmitOrderLine", ctx, mock.AnythingOfType("*domain.OrderLine"), (*domain.OrderLine)(nil), suite.userID).Return(nil).Once()
	suite.mockOrderRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockOrderRepo.On("CountOpenLinesInTx", ctx, suite.tx, suite.orderID).Return(int64(1), nil).Once()
	suite.mockOrderRepo.On("SetOrderClosedDateInTx", ctx, suite.tx, suite.orderID,
		mock.MatchedBy(func(closedDate *time.Time) bool { return closedDate == nil }),
		suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockOrderRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockOrderRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	_, err := suite.service.AddLine(ctx, suite.orderID, req, suite.userID)

	suite.Require().NoError(err)
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestAddLine_OverReservationRejected() {
	ctx := context.Background()
	req := dto.CreateOrderLineRequest{ReceiptID: suite.receiptID, Quantity: 9}
	overErr := &apperrors.OverReservationError{ReceiptID: suite.receiptID, LocationID: suite.locationID, Requested: 9, OnHand: 4}

	suite.mockOrderRepo.On("FindOrderByID", ctx, suite.orderID).Return(suite.order(), nil).Once()
	suite.mockReservationSvc.On("SubmitOrderLine", ctx, mock.AnythingOfType("*domain.OrderLine"), (*domain.OrderLine)(nil), suite.userID).Return(overErr).Once()

	_, err := suite.service.AddLine(ctx, suite.orderID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	var overReservation *apperrors.OverReservationError
	suite.Require().ErrorAs(err, &overReservation)
	suite.Equal(int64(4), overReservation.OnHand)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *OrderServiceTestSuite) TestUpdateLine_NotOpen() {
	ctx := context.Background()
	line := suite.openLine(2)
	line.Status = domain.LineBookedOut
	newQuantity := int64(4)

	suite.mockOrderRepo.On("FindOrderLineByID", ctx, line.LineID).Return(&line, nil).Once()

	_, err := suite.service.UpdateLine(ctx, line.LineID, dto.UpdateOrderLineRequest{Quantity: &newQuantity}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.ErrorIs(err, services.ErrLineNotOpen)
	suite.mockReservationSvc.AssertNotCalled(suite.T(), "SubmitOrderLine", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestUpdateLine_ClearsOverride() {
	ctx := context.Background()
	override := int64(5)
	line := suite.openLine(3)
	line.QuantityOverride = &override

	suite.mockOrderRepo.On("FindOrderLineByID", ctx, line.LineID).Return(&line, nil).Once()
	suite.mockReservationSvc.On("SubmitOrderLine", ctx, mock.MatchedBy(func(l *domain.OrderLine) bool {
		return l != nil && l.QuantityOverride == nil && l.Quantity == 3
	}), mock.MatchedBy(func(l *domain.OrderLine) bool {
		return l != nil && l.QuantityOverride != nil
	}), suite.userID).Return(nil).Once()

	updated, err := suite.service.UpdateLine(ctx, line.LineID,
		dto.UpdateOrderLineRequest{ClearQuantityOverride: true}, suite.userID)

	suite.Require().NoError(err)
	suite.Nil(updated.QuantityOverride)
	suite.mockReservationSvc.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestDeleteLine_BookedOutRejected() {
	ctx := context.Background()
	line := suite.openLine(2)
	line.Status = domain.LineBookedOut

	suite.mockOrderRepo.On("FindOrderLineByID", ctx, line.LineID).Return(&line, nil).Once()

	err := suite.service.DeleteLine(ctx, line.LineID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.ErrorIs(err, services.ErrLineBookedOut)
	suite.mockReservationSvc.AssertNotCalled(suite.T(), "SubmitOrderLine", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestCollect_Success() {
	ctx := context.Background()
	line := suite.openLine(2)

	suite.mockOrderRepo.On("FindOrderLineByID", ctx, line.LineID).Return(&line, nil).Once()
	suite.mockOrderRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockOrderRepo.On("UpdateOrderLineInTx", ctx, suite.tx, mock.MatchedBy(func(l domain.OrderLine) bool {
		return l.LineID == line.LineID && l.Collected
	})).Return(nil).Once()
	suite.mockOrderRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockOrderRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	collected, err := suite.service.Collect(ctx, line.LineID, true, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(collected)
	suite.True(collected.Collected)
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestBookOut_Success() {
	ctx := context.Background()
	line := suite.openLine(3)
	key := line.Key()
	row := domain.CellarStock{
		StockID:    uuid.NewString(),
		WineID:     suite.wineID,
		ReceiptID:  suite.receiptID,
		LocationID: suite.locationID,
		Quantity:   5,
		Reserved:   3,
	}

	suite.mockOrderRepo.On("FindOrderLineByID", ctx, line.LineID).Return(&line, nil).Once()
	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{key}).
		Return(map[domain.StockKey]domain.CellarStock{key: row}, nil).Once()
	suite.mockStockRepo.On("SaveMovementInTx", ctx, suite.tx, mock.MatchedBy(func(m domain.StockMovement) bool {
		return m.Direction == domain.Out && m.Cause == domain.CauseBookOut && m.Quantity == 3 && m.ReceiptID == suite.receiptID
	})).Return(nil).Once()
	suite.mockStockRepo.On("UpsertStockInTx", ctx, suite.tx, mock.MatchedBy(func(s domain.CellarStock) bool {
		return s.StockID == row.StockID && s.Quantity == 2 && s.Reserved == 0
	})).Return(nil).Once()
	suite.mockOrderRepo.On("UpdateOrderLineInTx", ctx, suite.tx, mock.MatchedBy(func(l domain.OrderLine) bool {
		return l.LineID == line.LineID && l.Status == domain.LineBookedOut
	})).Return(nil).Once()
	suite.mockOrderRepo.On("CountOpenLinesInTx", ctx, suite.tx, suite.orderID).Return(int64(0), nil).Once()
	suite.mockOrderRepo.On("SetOrderClosedDateInTx", ctx, suite.tx, suite.orderID,
		mock.MatchedBy(func(closedDate *time.Time) bool { return closedDate != nil }),
		suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("FindReceiptRefInTx", ctx, suite.tx, suite.receiptID).
		Return(suite.wineID, suite.participantID, nil).Once()
	suite.mockStockRepo.On("SumStockForWineInTx", ctx, suite.tx, suite.wineID).Return(int64(2), nil).Once()
	suite.mockStockRepo.On("SetWineClosedInTx", ctx, suite.tx, suite.wineID, false, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	err := suite.service.BookOut(ctx, line.LineID, suite.userID)

	suite.Require().NoError(err)
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestBookOut_UsesOverrideAndEmptiesRow() {
	ctx := context.Background()
	line := suite.openLine(3)
	override := int64(5)
	line.QuantityOverride = &override
	key := line.Key()
	row := domain.CellarStock{
		StockID:    uuid.NewString(),
		WineID:     suite.wineID,
		ReceiptID:  suite.receiptID,
		LocationID: suite.locationID,
		Quantity:   5,
		Reserved:   5,
	}

	suite.mockOrderRepo.On("FindOrderLineByID", ctx, line.LineID).Return(&line, nil).Once()
	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{key}).
		Return(map[domain.StockKey]domain.CellarStock{key: row}, nil).Once()
	suite.mockStockRepo.On("SaveMovementInTx", ctx, suite.tx, mock.MatchedBy(func(m domain.StockMovement) bool {
		return m.Quantity == 5
	})).Return(nil).Once()
	suite.mockStockRepo.On("DeleteStockInTx", ctx, suite.tx, row.StockID).Return(nil).Once()
	suite.mockOrderRepo.On("UpdateOrderLineInTx", ctx, suite.tx, mock.AnythingOfType("domain.OrderLine")).Return(nil).Once()
	suite.mockOrderRepo.On("CountOpenLinesInTx", ctx, suite.tx, suite.orderID).Return(int64(0), nil).Once()
	suite.mockOrderRepo.On("SetOrderClosedDateInTx", ctx, suite.tx, suite.orderID, mock.Anything, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("FindReceiptRefInTx", ctx, suite.tx, suite.receiptID).
		Return(suite.wineID, suite.participantID, nil).Once()
	suite.mockStockRepo.On("SumStockForWineInTx", ctx, suite.tx, suite.wineID).Return(int64(0), nil).Once()
	suite.mockStockRepo.On("SetWineClosedInTx", ctx, suite.tx, suite.wineID, true, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	err := suite.service.BookOut(ctx, line.LineID, suite.userID)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "UpsertStockInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestBookOut_Shortage() {
	ctx := context.Background()
	line := suite.openLine(3)
	key := line.Key()
	row := domain.CellarStock{
		StockID:    uuid.NewString(),
		ReceiptID:  suite.receiptID,
		LocationID: suite.locationID,
		Quantity:   2,
		Reserved:   2,
	}

	suite.mockOrderRepo.On("FindOrderLineByID", ctx, line.LineID).Return(&line, nil).Once()
	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{key}).
		Return(map[domain.StockKey]domain.CellarStock{key: row}, nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(nil)

	err := suite.service.BookOut(ctx, line.LineID, suite.userID)

	suite.Require().Error(err)
	var shortage *apperrors.StockShortageError
	suite.Require().ErrorAs(err, &shortage)
	suite.Equal(int64(1), shortage.Shortfall)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "SaveMovementInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestBookOut_ProcessedLineIsNoOp() {
	ctx := context.Background()
	line := suite.openLine(2)
	line.Status = domain.LineVoided

	suite.mockOrderRepo.On("FindOrderLineByID", ctx, line.LineID).Return(&line, nil).Once()

	err := suite.service.BookOut(ctx, line.LineID, suite.userID)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "UpdateOrderLineInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestBookOutCollected_BooksOnlyCollectedOpenLines() {
	ctx := context.Background()
	collected1 := suite.openLine(1)
	collected1.Collected = true
	collected2 := suite.openLine(1)
	collected2.BinID = "A3"
	collected2.Collected = true
	uncollected := suite.openLine(1)
	voided := suite.openLine(1)
	voided.Collected = true
	voided.Status = domain.LineVoided
	lines := []domain.OrderLine{collected1, collected2, uncollected, voided}

	rowFor := func(l domain.OrderLine) domain.CellarStock {
		return domain.CellarStock{
			StockID:    uuid.NewString(),
			WineID:     suite.wineID,
			ReceiptID:  l.ReceiptID,
			LocationID: l.LocationID,
			BinID:      l.BinID,
			Quantity:   4,
			Reserved:   1,
		}
	}

	suite.mockOrderRepo.On("ListLinesByOrder", ctx, suite.orderID).Return(lines, nil).Once()
	suite.mockOrderRepo.On("FindOrderLineByID", ctx, collected1.LineID).Return(&collected1, nil).Once()
	suite.mockOrderRepo.On("FindOrderLineByID", ctx, collected2.LineID).Return(&collected2, nil).Once()
	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Twice()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{collected1.Key()}).
		Return(map[domain.StockKey]domain.CellarStock{collected1.Key(): rowFor(collected1)}, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{collected2.Key()}).
		Return(map[domain.StockKey]domain.CellarStock{collected2.Key(): rowFor(collected2)}, nil).Once()
	suite.mockStockRepo.On("SaveMovementInTx", ctx, suite.tx, mock.AnythingOfType("domain.StockMovement")).Return(nil).Twice()
	suite.mockStockRepo.On("UpsertStockInTx", ctx, suite.tx, mock.AnythingOfType("domain.CellarStock")).Return(nil).Twice()
	suite.mockOrderRepo.On("UpdateOrderLineInTx", ctx, suite.tx, mock.AnythingOfType("domain.OrderLine")).Return(nil).Twice()
	// One open line remains after the first book-out, none after the second.
	suite.mockOrderRepo.On("CountOpenLinesInTx", ctx, suite.tx, suite.orderID).Return(int64(1), nil).Once()
	suite.mockOrderRepo.On("CountOpenLinesInTx", ctx, suite.tx, suite.orderID).Return(int64(0), nil).Once()
	suite.mockOrderRepo.On("SetOrderClosedDateInTx", ctx, suite.tx, suite.orderID, mock.Anything, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("FindReceiptRefInTx", ctx, suite.tx, suite.receiptID).
		Return(suite.wineID, suite.participantID, nil).Twice()
	suite.mockStockRepo.On("SumStockForWineInTx", ctx, suite.tx, suite.wineID).Return(int64(3), nil).Twice()
	suite.mockStockRepo.On("SetWineClosedInTx", ctx, suite.tx, suite.wineID, false, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Twice()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Twice()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	booked, err := suite.service.BookOutCollected(ctx, suite.orderID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(2, booked)
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestBookOutCollected_NoEligibleLinesBooksZero() {
	ctx := context.Background()
	uncollected := suite.openLine(1)
	processed := suite.openLine(2)
	processed.Collected = true
	processed.Status = domain.LineBookedOut

	suite.mockOrderRepo.On("ListLinesByOrder", ctx, suite.orderID).
		Return([]domain.OrderLine{uncollected, processed}, nil).Once()

	booked, err := suite.service.BookOutCollected(ctx, suite.orderID, suite.userID)

	suite.Require().NoError(err)
	suite.Zero(booked)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *OrderServiceTestSuite) TestVoidLine_ReleasesReservationAndClosesOrder() {
	ctx := context.Background()
	line := suite.openLine(2)

	suite.mockOrderRepo.On("FindOrderLineByID", ctx, line.LineID).Return(&line, nil).Once()
	suite.mockReservationSvc.On("SubmitOrderLine", ctx, mock.MatchedBy(func(l *domain.OrderLine) bool {
		return l != nil && l.Status == domain.LineVoided
	}), mock.MatchedBy(func(l *domain.OrderLine) bool {
		return l != nil && l.Status == domain.LineOpen
	}), suite.userID).Return(nil).Once()
	suite.mockOrderRepo.On("FindOrderByID", ctx, suite.orderID).Return(suite.order(), nil).Once()
	suite.mockOrderRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockOrderRepo.On("CountOpenLinesInTx", ctx, suite.tx, suite.orderID).Return(int64(0), nil).Once()
	suite.mockOrderRepo.On("SetOrderClosedDateInTx", ctx, suite.tx, suite.orderID,
		mock.MatchedBy(func(closedDate *time.Time) bool { return closedDate != nil }),
		suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockOrderRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockOrderRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	err := suite.service.VoidLine(ctx, line.LineID, suite.userID)

	suite.Require().NoError(err)
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockReservationSvc.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestDeleteOrder_RemainingLinesBlock() {
	ctx := context.Background()

	// Terminal lines block deletion just like open ones.
	suite.mockOrderRepo.On("CountLines", ctx, suite.orderID).Return(int64(2), nil).Once()

	err := suite.service.DeleteOrder(ctx, suite.orderID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	var integrity *apperrors.ReferentialIntegrityError
	suite.Require().ErrorAs(err, &integrity)
	suite.Equal(suite.orderID, integrity.EntityID)
	suite.Equal("order lines", integrity.Dependent)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "DeleteOrder", mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestDeleteOrder_Success() {
	ctx := context.Background()

	suite.mockOrderRepo.On("CountLines", ctx, suite.orderID).Return(int64(0), nil).Once()
	suite.mockOrderRepo.On("DeleteOrder", ctx, suite.orderID).Return(nil).Once()

	err := suite.service.DeleteOrder(ctx, suite.orderID, suite.userID)

	suite.Require().NoError(err)
	suite.mockOrderRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestUpdateOrder_NoChanges() {
	ctx := context.Background()
	order := suite.order()

	suite.mockOrderRepo.On("FindOrderByID", ctx, suite.orderID).Return(order, nil).Once()

	updated, err := suite.service.UpdateOrder(ctx, suite.orderID, dto.UpdateOrderRequest{}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(order, updated)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "UpdateOrder", mock.Anything, mock.Anything)
}

func TestOrderService(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
