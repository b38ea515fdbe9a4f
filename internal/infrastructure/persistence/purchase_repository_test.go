package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/modelmart/backend/internal/domain/ledger"
	"github.com/modelmart/backend/internal/domain/shared"
)

// newMockPurchaseRepository creates a GormPurchaseRepository with a mocked SQL connection
func newMockPurchaseRepository(t *testing.T) (*GormPurchaseRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPurchaseRepository(gormDB), mock, mockDB
}

func newTestPurchaseRecord(t *testing.T, buyerID, modelID uuid.UUID) *ledger.PurchaseRecord {
	t.Helper()
	record, err := ledger.NewPurchaseRecord(
		buyerID, "buyer@example.com",
		modelID, "Sentiment Analyzer",
		uuid.New(), "dev@example.com",
	)
	require.NoError(t, err)
	return record
}

func purchaseRows(recordID, buyerID, modelID uuid.UUID, modelName string, purchasedAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "buyer_id", "buyer_email", "model_id", "model_name",
		"developer_id", "developer_email", "purchased_at",
	}).AddRow(
		recordID, buyerID, "buyer@example.com", modelID, modelName,
		uuid.New(), "dev@example.com", purchasedAt,
	)
}

func TestGormPurchaseRepository_Append(t *testing.T) {
	t.Run("appends new record", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		record := newTestPurchaseRecord(t, uuid.New(), uuid.New())

		mock.ExpectExec(`INSERT INTO "purchase_records"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Append(context.Background(), record)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to ErrDuplicatePurchase", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		record := newTestPurchaseRecord(t, uuid.New(), uuid.New())

		mock.ExpectExec(`INSERT INTO "purchase_records"`).
			WillReturnError(gorm.ErrDuplicatedKey)

		err := repo.Append(context.Background(), record)

		assert.Equal(t, shared.ErrDuplicatePurchase, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseRepository_FindByBuyerAndModel(t *testing.T) {
	t.Run("finds existing record", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		recordID := uuid.New()
		buyerID := uuid.New()
		modelID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "purchase_records" WHERE buyer_id = \$1 AND model_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(buyerID, modelID, 1).
			WillReturnRows(purchaseRows(recordID, buyerID, modelID, "Sentiment Analyzer", time.Now()))

		record, err := repo.FindByBuyerAndModel(context.Background(), buyerID, modelID)

		assert.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, recordID, record.ID)
		assert.Equal(t, buyerID, record.BuyerID)
		assert.Equal(t, modelID, record.ModelID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when the buyer has not purchased the model", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		buyerID := uuid.New()
		modelID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "purchase_records" WHERE buyer_id = \$1 AND model_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(buyerID, modelID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		record, err := repo.FindByBuyerAndModel(context.Background(), buyerID, modelID)

		assert.Nil(t, record)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseRepository_HistoryByBuyer(t *testing.T) {
	t.Run("returns purchases most recent first", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		buyerID := uuid.New()
		newer := uuid.New()
		older := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows([]string{
			"id", "buyer_id", "buyer_email", "model_id", "model_name",
			"developer_id", "developer_email", "purchased_at",
		}).
			AddRow(newer, buyerID, "buyer@example.com", uuid.New(), "Voice Cloner",
				uuid.New(), "dev@example.com", now).
			AddRow(older, buyerID, "buyer@example.com", uuid.New(), "Sentiment Analyzer",
				uuid.New(), "dev@example.com", now.Add(-time.Hour))

		mock.ExpectQuery(`SELECT \* FROM "purchase_records" WHERE buyer_id = \$1 ORDER BY purchased_at DESC`).
			WithArgs(buyerID).
			WillReturnRows(rows)

		records, err := repo.HistoryByBuyer(context.Background(), buyerID)

		assert.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, newer, records[0].ID)
		assert.Equal(t, older, records[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice for buyer with no purchases", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		buyerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "purchase_records" WHERE buyer_id = \$1 ORDER BY purchased_at DESC`).
			WithArgs(buyerID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		records, err := repo.HistoryByBuyer(context.Background(), buyerID)

		assert.NoError(t, err)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
