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

// fakeTx stands in for a pgx transaction handle. The services only pass it
// through to the repository, so none of its methods are ever called.
type fakeTx struct {
	pgx.Tx
}

// --- Mock StockRepository ---
type MockStockRepository struct {
	mock.Mock
}

// Ensure MockStockRepository implements portsrepo.StockRepositoryWithTx
var _ portsrepo.StockRepositoryWithTx = (*MockStockRepository)(nil)

func (m *MockStockRepository) FindStockByKey(ctx context.Context, key domain.StockKey) (*domain.CellarStock, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CellarStock), args.Error(1)
}

func (m *MockStockRepository) ListStockByLocation(ctx context.Context, locationID string) ([]domain.CellarStock, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CellarStock), args.Error(1)
}

func (m *MockStockRepository) ListStockByReceipt(ctx context.Context, receiptID string) ([]domain.CellarStock, error) {
	args := m.Called(ctx, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CellarStock), args.Error(1)
}

func (m *MockStockRepository) ListStockByWine(ctx context.Context, wineID string) ([]domain.CellarStock, error) {
	args := m.Called(ctx, wineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CellarStock), args.Error(1)
}

func (m *MockStockRepository) SumOnHandByBin(ctx context.Context, locationID string) (map[string]int64, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockStockRepository) FindMovementByID(ctx context.Context, movementID string) (*domain.StockMovement, error) {
	args := m.Called(ctx, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockMovement), args.Error(1)
}

func (m *MockStockRepository) ListMovementsByReceipt(ctx context.Context, receiptID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error) {
	args := m.Called(ctx, receiptID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.StockMovement), returnedNextToken, args.Error(2)
}

func (m *MockStockRepository) ListMovementsByLocation(ctx context.Context, locationID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error) {
	args := m.Called(ctx, locationID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.StockMovement), returnedNextToken, args.Error(2)
}

func (m *MockStockRepository) FindStockForUpdate(ctx context.Context, tx pgx.Tx, keys []domain.StockKey) (map[domain.StockKey]domain.CellarStock, error) {
	args := m.Called(ctx, tx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.StockKey]domain.CellarStock), args.Error(1)
}

func (m *MockStockRepository) UpsertStockInTx(ctx context.Context, tx pgx.Tx, stock domain.CellarStock) error {
	args := m.Called(ctx, tx, stock)
	return args.Error(0)
}

func (m *MockStockRepository) DeleteStockInTx(ctx context.Context, tx pgx.Tx, stockID string) error {
	args := m.Called(ctx, tx, stockID)
	return args.Error(0)
}

func (m *MockStockRepository) SaveMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error {
	args := m.Called(ctx, tx, movement)
	return args.Error(0)
}

func (m *MockStockRepository) UpdateMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error {
	args := m.Called(ctx, tx, movement)
	return args.Error(0)
}

func (m *MockStockRepository) DeleteMovementInTx(ctx context.Context, tx pgx.Tx, movementID string) error {
	args := m.Called(ctx, tx, movementID)
	return args.Error(0)
}

func (m *MockStockRepository) FindReceiptRefInTx(ctx context.Context, tx pgx.Tx, receiptID string) (string, string, error) {
	args := m.Called(ctx, tx, receiptID)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockStockRepository) SumStockForWineInTx(ctx context.Context, tx pgx.Tx, wineID string) (int64, error) {
	args := m.Called(ctx, tx, wineID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockRepository) SetWineClosedInTx(ctx context.Context, tx pgx.Tx, wineID string, closed bool, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, wineID, closed, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockStockRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockStockRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockStockRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Test Suite Setup ---
type StockServiceTestSuite struct {
	suite.Suite
	mockStockRepo *MockStockRepository
	service       portssvc.StockSvcFacade
	tx            fakeTx
	receiptID     string
	locationID    string
	wineID        string
	participantID string
	userID        string
	key           domain.StockKey
}

func (suite *StockServiceTestSuite) SetupTest() {
	suite.mockStockRepo = new(MockStockRepository)
	suite.service = services.NewStockService(suite.mockStockRepo)

	suite.tx = fakeTx{}
	suite.receiptID = uuid.NewString()
	suite.locationID = uuid.NewString()
	suite.wineID = uuid.NewString()
	suite.participantID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.key = domain.StockKey{ReceiptID: suite.receiptID, LocationID: suite.locationID}
}

func (suite *StockServiceTestSuite) stockRow(quantity, reserved int64) domain.CellarStock {
	return domain.CellarStock{
		StockID:       uuid.NewString(),
		WineID:        suite.wineID,
		ParticipantID: suite.participantID,
		ReceiptID:     suite.receiptID,
		LocationID:    suite.locationID,
		Quantity:      quantity,
		Reserved:      reserved,
	}
}

func (suite *StockServiceTestSuite) movement(direction domain.MovementDirection, quantity int64) domain.StockMovement {
	return domain.StockMovement{
		MovementID:   uuid.NewString(),
		ReceiptID:    suite.receiptID,
		LocationID:   suite.locationID,
		Direction:    direction,
		Cause:        domain.CausePurchase,
		MovementDate: time.Now().UTC(),
		Quantity:     quantity,
	}
}

// --- Test Cases ---

func (suite *StockServiceTestSuite) TestValidateChange_Success() {
	ctx := context.Background()
	entry := suite.movement(domain.In, 5)

	suite.mockStockRepo.On("FindStockByKey", ctx, suite.key).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.ValidateChange(ctx, &entry, nil)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *StockServiceTestSuite) TestValidateChange_Shortage() {
	ctx := context.Background()
	entry := suite.movement(domain.Out, 6)
	row := suite.stockRow(5, 0)

	suite.mockStockRepo.On("FindStockByKey", ctx, suite.key).Return(&row, nil).Once()

	err := suite.service.ValidateChange(ctx, &entry, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	var shortage *apperrors.StockShortageError
	suite.Require().ErrorAs(err, &shortage)
	suite.Equal(int64(1), shortage.Shortfall)
	suite.Equal(suite.receiptID, shortage.ReceiptID)
}

func (suite *StockServiceTestSuite) TestValidateChange_ReservedNotCovered() {
	ctx := context.Background()
	entry := suite.movement(domain.Out, 3)
	row := suite.stockRow(5, 4)

	suite.mockStockRepo.On("FindStockByKey", ctx, suite.key).Return(&row, nil).Once()

	err := suite.service.ValidateChange(ctx, &entry, nil)

	suite.Require().Error(err)
	var shortage *apperrors.StockShortageError
	suite.Require().ErrorAs(err, &shortage)
	suite.Equal(int64(2), shortage.Shortfall)
}

func (suite *StockServiceTestSuite) TestValidateChange_EmptyChange() {
	err := suite.service.ValidateChange(context.Background(), nil, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEmptyChange)
}

func (suite *StockServiceTestSuite) TestValidateChange_ReceiptImmutable() {
	ctx := context.Background()
	oldEntry := suite.movement(domain.In, 2)
	newEntry := oldEntry
	newEntry.ReceiptID = uuid.NewString()

	err := suite.service.ValidateChange(ctx, &newEntry, &oldEntry)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrReceiptImmutable)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "FindStockByKey", mock.Anything, mock.Anything)
}

func (suite *StockServiceTestSuite) TestCreateMovement_Success() {
	ctx := context.Background()
	row := suite.stockRow(5, 0)
	req := dto.CreateMovementRequest{
		ReceiptID:    suite.receiptID,
		LocationID:   suite.locationID,
		Direction:    string(domain.In),
		Cause:        string(domain.CausePurchase),
		MovementDate: time.Now().UTC(),
		Quantity:     2,
	}

	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{suite.key}).
		Return(map[domain.StockKey]domain.CellarStock{suite.key: row}, nil).Once()
	suite.mockStockRepo.On("SaveMovementInTx", ctx, suite.tx, mock.MatchedBy(func(m domain.StockMovement) bool {
		return m.ReceiptID == suite.receiptID && m.Direction == domain.In && m.Quantity == 2
	})).Return(nil).Once()
	suite.mockStockRepo.On("UpsertStockInTx", ctx, suite.tx, mock.MatchedBy(func(s domain.CellarStock) bool {
		return s.StockID == row.StockID && s.Quantity == 7
	})).Return(nil).Once()
	suite.mockStockRepo.On("FindReceiptRefInTx", ctx, suite.tx, suite.receiptID).
		Return(suite.wineID, suite.participantID, nil).Once()
	suite.mockStockRepo.On("SumStockForWineInTx", ctx, suite.tx, suite.wineID).Return(int64(7), nil).Once()
	suite.mockStockRepo.On("SetWineClosedInTx", ctx, suite.tx, suite.wineID, false, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	created, err := suite.service.CreateMovement(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.MovementID)
	suite.Equal(suite.userID, created.CreatedBy)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *StockServiceTestSuite) TestCreateMovement_SeedsNewRow() {
	ctx := context.Background()
	req := dto.CreateMovementRequest{
		ReceiptID:    suite.receiptID,
		LocationID:   suite.locationID,
		Direction:    string(domain.In),
		Cause:        string(domain.CausePurchase),
		MovementDate: time.Now().UTC(),
		Quantity:     3,
	}

	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{suite.key}).
		Return(map[domain.StockKey]domain.CellarStock{}, nil).Once()
	suite.mockStockRepo.On("SaveMovementInTx", ctx, suite.tx, mock.AnythingOfType("domain.StockMovement")).Return(nil).Once()
	// Resolved once to seed the new projection row and once for the closed-state refresh.
	suite.mockStockRepo.On("FindReceiptRefInTx", ctx, suite.tx, suite.receiptID).
		Return(suite.wineID, suite.participantID, nil).Twice()
	suite.mockStockRepo.On("UpsertStockInTx", ctx, suite.tx, mock.MatchedBy(func(s domain.CellarStock) bool {
		return s.WineID == suite.wineID && s.ParticipantID == suite.participantID && s.Quantity == 3 && s.StockID != ""
	})).Return(nil).Once()
	suite.mockStockRepo.On("SumStockForWineInTx", ctx, suite.tx, suite.wineID).Return(int64(3), nil).Once()
	suite.mockStockRepo.On("SetWineClosedInTx", ctx, suite.tx, suite.wineID, false, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	created, err := suite.service.CreateMovement(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *StockServiceTestSuite) TestCreateMovement_ShortageRollsBack() {
	ctx := context.Background()
	row := suite.stockRow(5, 0)
	req := dto.CreateMovementRequest{
		ReceiptID:    suite.receiptID,
		LocationID:   suite.locationID,
		Direction:    string(domain.Out),
		Cause:        string(domain.CauseDrink),
		MovementDate: time.Now().UTC(),
		Quantity:     6,
	}

	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{suite.key}).
		Return(map[domain.StockKey]domain.CellarStock{suite.key: row}, nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(nil)

	_, err := suite.service.CreateMovement(ctx, req, suite.userID)

	suite.Require().Error(err)
	var shortage *apperrors.StockShortageError
	suite.Require().ErrorAs(err, &shortage)
	suite.Equal(int64(1), shortage.Shortfall)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "SaveMovementInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *StockServiceTestSuite) TestDeleteMovement_ReversesEffectAndClosesWine() {
	ctx := context.Background()
	entry := suite.movement(domain.In, 2)
	row := suite.stockRow(2, 0)

	suite.mockStockRepo.On("FindMovementByID", ctx, entry.MovementID).Return(&entry, nil).Once()
	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{suite.key}).
		Return(map[domain.StockKey]domain.CellarStock{suite.key: row}, nil).Once()
	suite.mockStockRepo.On("DeleteMovementInTx", ctx, suite.tx, entry.MovementID).Return(nil).Once()
	// The reversal empties the row, so it is removed rather than upserted.
	suite.mockStockRepo.On("DeleteStockInTx", ctx, suite.tx, row.StockID).Return(nil).Once()
	suite.mockStockRepo.On("FindReceiptRefInTx", ctx, suite.tx, suite.receiptID).
		Return(suite.wineID, suite.participantID, nil).Once()
	suite.mockStockRepo.On("SumStockForWineInTx", ctx, suite.tx, suite.wineID).Return(int64(0), nil).Once()
	suite.mockStockRepo.On("SetWineClosedInTx", ctx, suite.tx, suite.wineID, true, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	err := suite.service.DeleteMovement(ctx, entry.MovementID, suite.userID)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "UpsertStockInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *StockServiceTestSuite) TestTransfer_SameKeyRejected() {
	ctx := context.Background()
	req := dto.TransferRequest{
		ReceiptID:    suite.receiptID,
		FromLocation: suite.locationID,
		ToLocation:   suite.locationID,
		Quantity:     2,
	}

	err := suite.service.Transfer(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorIs(err, services.ErrSameKeyTransfer)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *StockServiceTestSuite) TestTransfer_Success() {
	ctx := context.Background()
	targetLocationID := uuid.NewString()
	fromKey := suite.key
	toKey := domain.StockKey{ReceiptID: suite.receiptID, LocationID: targetLocationID}
	fromRow := suite.stockRow(5, 0)
	req := dto.TransferRequest{
		ReceiptID:    suite.receiptID,
		FromLocation: suite.locationID,
		ToLocation:   targetLocationID,
		Quantity:     3,
	}

	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, mock.MatchedBy(func(keys []domain.StockKey) bool {
		return len(keys) == 2
	})).Return(map[domain.StockKey]domain.CellarStock{fromKey: fromRow}, nil).Once()
	suite.mockStockRepo.On("SaveMovementInTx", ctx, suite.tx, mock.MatchedBy(func(m domain.StockMovement) bool {
		return m.Direction == domain.Out && m.LocationID == suite.locationID && m.Cause == domain.CauseTransfer && m.Quantity == 3
	})).Return(nil).Once()
	suite.mockStockRepo.On("SaveMovementInTx", ctx, suite.tx, mock.MatchedBy(func(m domain.StockMovement) bool {
		return m.Direction == domain.In && m.LocationID == targetLocationID && m.Cause == domain.CauseTransfer && m.Quantity == 3
	})).Return(nil).Once()
	suite.mockStockRepo.On("UpsertStockInTx", ctx, suite.tx, mock.MatchedBy(func(s domain.CellarStock) bool {
		return s.Key() == fromKey && s.Quantity == 2
	})).Return(nil).Once()
	suite.mockStockRepo.On("UpsertStockInTx", ctx, suite.tx, mock.MatchedBy(func(s domain.CellarStock) bool {
		return s.Key() == toKey && s.Quantity == 3
	})).Return(nil).Once()
	// Resolved for the destination row seed and again for the closed-state refresh.
	suite.mockStockRepo.On("FindReceiptRefInTx", ctx, suite.tx, suite.receiptID).
		Return(suite.wineID, suite.participantID, nil).Twice()
	suite.mockStockRepo.On("SumStockForWineInTx", ctx, suite.tx, suite.wineID).Return(int64(5), nil).Once()
	suite.mockStockRepo.On("SetWineClosedInTx", ctx, suite.tx, suite.wineID, false, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	err := suite.service.Transfer(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *StockServiceTestSuite) TestTransfer_ShortageAtSource() {
	ctx := context.Background()
	targetLocationID := uuid.NewString()
	fromRow := suite.stockRow(2, 0)
	req := dto.TransferRequest{
		ReceiptID:    suite.receiptID,
		FromLocation: suite.locationID,
		ToLocation:   targetLocationID,
		Quantity:     3,
	}

	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, mock.Anything).
		Return(map[domain.StockKey]domain.CellarStock{suite.key: fromRow}, nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(nil)

	err := suite.service.Transfer(ctx, req, suite.userID)

	suite.Require().Error(err)
	var shortage *apperrors.StockShortageError
	suite.Require().ErrorAs(err, &shortage)
	suite.Equal(int64(1), shortage.Shortfall)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "SaveMovementInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *StockServiceTestSuite) TestDrink_DefaultsToSingleBottle() {
	ctx := context.Background()
	row := suite.stockRow(3, 0)
	req := dto.DrinkRequest{ReceiptID: suite.receiptID, LocationID: suite.locationID}

	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{suite.key}).
		Return(map[domain.StockKey]domain.CellarStock{suite.key: row}, nil).Once()
	suite.mockStockRepo.On("SaveMovementInTx", ctx, suite.tx, mock.MatchedBy(func(m domain.StockMovement) bool {
		return m.Direction == domain.Out && m.Cause == domain.CauseDrink && m.Quantity == 1
	})).Return(nil).Once()
	suite.mockStockRepo.On("UpsertStockInTx", ctx, suite.tx, mock.MatchedBy(func(s domain.CellarStock) bool {
		return s.Quantity == 2
	})).Return(nil).Once()
	suite.mockStockRepo.On("FindReceiptRefInTx", ctx, suite.tx, suite.receiptID).
		Return(suite.wineID, suite.participantID, nil).Once()
	suite.mockStockRepo.On("SumStockForWineInTx", ctx, suite.tx, suite.wineID).Return(int64(2), nil).Once()
	suite.mockStockRepo.On("SetWineClosedInTx", ctx, suite.tx, suite.wineID, false, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	created, err := suite.service.Drink(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.Equal(int64(1), created.Quantity)
	suite.Equal(domain.Out, created.Direction)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *StockServiceTestSuite) TestUpdateMovement_AppliesNetDifference() {
	ctx := context.Background()
	existing := suite.movement(domain.In, 5)
	row := suite.stockRow(5, 0)
	newQuantity := int64(3)
	req := dto.UpdateMovementRequest{Quantity: &newQuantity}

	suite.mockStockRepo.On("FindMovementByID", ctx, existing.MovementID).Return(&existing, nil).Once()
	suite.mockStockRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.mockStockRepo.On("FindStockForUpdate", ctx, suite.tx, []domain.StockKey{suite.key}).
		Return(map[domain.StockKey]domain.CellarStock{suite.key: row}, nil).Once()
	suite.mockStockRepo.On("UpdateMovementInTx", ctx, suite.tx, mock.MatchedBy(func(m domain.StockMovement) bool {
		return m.MovementID == existing.MovementID && m.Quantity == 3
	})).Return(nil).Once()
	suite.mockStockRepo.On("UpsertStockInTx", ctx, suite.tx, mock.MatchedBy(func(s domain.CellarStock) bool {
		return s.Quantity == 3
	})).Return(nil).Once()
	suite.mockStockRepo.On("FindReceiptRefInTx", ctx, suite.tx, suite.receiptID).
		Return(suite.wineID, suite.participantID, nil).Once()
	suite.mockStockRepo.On("SumStockForWineInTx", ctx, suite.tx, suite.wineID).Return(int64(3), nil).Once()
	suite.mockStockRepo.On("SetWineClosedInTx", ctx, suite.tx, suite.wineID, false, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockStockRepo.On("Commit", ctx, suite.tx).Return(nil).Once()
	suite.mockStockRepo.On("Rollback", ctx, suite.tx).Return(pgx.ErrTxClosed)

	updated, err := suite.service.UpdateMovement(ctx, existing.MovementID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Equal(int64(3), updated.Quantity)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *StockServiceTestSuite) TestListMovementsByReceipt_DefaultsLimit() {
	ctx := context.Background()
	movements := []domain.StockMovement{suite.movement(domain.In, 2)}
	token := "next-page"

	suite.mockStockRepo.On("ListMovementsByReceipt", ctx, suite.receiptID, 20, (*string)(nil)).
		Return(movements, token, nil).Once()

	resp, err := suite.service.ListMovementsByReceipt(ctx, suite.receiptID, dto.ListMovementsParams{})

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.Len(resp.Movements, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(token, *resp.NextToken)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func TestStockService(t *testing.T) {
	suite.Run(t, new(StockServiceTestSuite))
}
