package gorm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(AllModels()...))
	return db
}

type RepositoryTestSuite struct {
	suite.Suite
	ctx         context.Context
	db          *gorm.DB
	ingredients *IngredientRepository
	inventory   *InventoryRepository
	shopping    *ShoppingListRepository
	locations   *LocationRepository
	tx          *Transactor
	userID      uuid.UUID
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = newTestDB(suite.T())
	suite.ingredients = &IngredientRepository{db: suite.db}
	suite.inventory = &InventoryRepository{db: suite.db}
	suite.shopping = &ShoppingListRepository{db: suite.db}
	suite.locations = &LocationRepository{db: suite.db}
	suite.tx = &Transactor{db: suite.db}
	suite.userID = uuid.New()
}

func (suite *RepositoryTestSuite) ingredient(name string) *kitchen.CanonicalIngredient {
	ing, err := kitchen.NewCanonicalIngredient(name, "")
	require.NoError(suite.T(), err)
	stored, _, err := suite.ingredients.CreateIfAbsent(suite.ctx, ing)
	require.NoError(suite.T(), err)
	return stored
}

func (suite *RepositoryTestSuite) location(name string, order int) kitchen.Location {
	loc, err := kitchen.NewLocation(suite.userID, name, order)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.locations.Create(suite.ctx, loc))
	return *loc
}

func (suite *RepositoryTestSuite) TestIngredientCreateIfAbsent() {
	suite.Run("NewName_ShouldCreate", func() {
		ing, _ := kitchen.NewCanonicalIngredient("Saffron", "")

		stored, created, err := suite.ingredients.CreateIfAbsent(suite.ctx, ing)

		require.NoError(suite.T(), err)
		assert.True(suite.T(), created)
		assert.Equal(suite.T(), ing.ID, stored.ID)
		assert.Equal(suite.T(), "saffron", stored.NameKey)
	})

	suite.Run("SameNameDifferentSpelling_ShouldReturnExisting", func() {
		first, _ := kitchen.NewCanonicalIngredient("Tomatoes", "")
		second, _ := kitchen.NewCanonicalIngredient("  tomato ", "")

		a, createdA, err := suite.ingredients.CreateIfAbsent(suite.ctx, first)
		require.NoError(suite.T(), err)
		b, createdB, err := suite.ingredients.CreateIfAbsent(suite.ctx, second)
		require.NoError(suite.T(), err)

		assert.True(suite.T(), createdA)
		assert.False(suite.T(), createdB)
		assert.Equal(suite.T(), a.ID, b.ID)
		assert.Equal(suite.T(), "Tomatoes", b.Name)
	})

	suite.Run("ConcurrentCreates_ShouldYieldOneRow", func() {
		var wg sync.WaitGroup
		ids := make([]uuid.UUID, 8)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ing, _ := kitchen.NewCanonicalIngredient("Cumin", "")
				stored, _, err := suite.ingredients.CreateIfAbsent(suite.ctx, ing)
				if err == nil {
					ids[i] = stored.ID
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(suite.T(), ids[0], id)
		}
		var count int64
		suite.db.Model(&IngredientModel{}).Where("name_key = ?", "cumin").Count(&count)
		assert.Equal(suite.T(), int64(1), count)
	})
}

func (suite *RepositoryTestSuite) TestIngredientFind() {
	garlic := suite.ingredient("Garlic")

	found, err := suite.ingredients.FindByName(suite.ctx, "GARLIC ")
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), found)
	assert.Equal(suite.T(), garlic.ID, found.ID)

	missing, err := suite.ingredients.FindByName(suite.ctx, "green garlic")
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), missing)

	byID, err := suite.ingredients.FindByIDs(suite.ctx, []uuid.UUID{garlic.ID, uuid.New()})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), byID, 1)
	assert.Equal(suite.T(), "Garlic", byID[garlic.ID].Name)
}

func (suite *RepositoryTestSuite) TestShoppingUpsert_DeduplicatesByIngredient() {
	garlic := suite.ingredient("garlic")

	first, err := suite.shopping.Upsert(suite.ctx, &kitchen.ShoppingListItem{
		UserID: suite.userID, IngredientID: garlic.ID, Quantity: "2", Unit: "cloves",
	})
	require.NoError(suite.T(), err)
	_, err = suite.shopping.SetChecked(suite.ctx, suite.userID, first.ID, true)
	require.NoError(suite.T(), err)

	second, err := suite.shopping.Upsert(suite.ctx, &kitchen.ShoppingListItem{
		UserID: suite.userID, IngredientID: garlic.ID, Quantity: "3", Unit: "cloves", Notes: "for pesto",
	})
	require.NoError(suite.T(), err)

	items, err := suite.shopping.ListByUser(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), items, 1)
	assert.Equal(suite.T(), first.ID, second.ID)
	assert.Equal(suite.T(), "3", items[0].Quantity)
	assert.Equal(suite.T(), "for pesto", items[0].Notes)
	assert.Equal(suite.T(), "garlic", items[0].Name)
	assert.True(suite.T(), items[0].IsChecked, "checked flag survives an update")
}

func (suite *RepositoryTestSuite) TestShoppingListIsScopedPerUser() {
	milk := suite.ingredient("milk")
	other := uuid.New()

	mine, err := suite.shopping.Upsert(suite.ctx, &kitchen.ShoppingListItem{UserID: suite.userID, IngredientID: milk.ID, Quantity: "1"})
	require.NoError(suite.T(), err)
	_, err = suite.shopping.Upsert(suite.ctx, &kitchen.ShoppingListItem{UserID: other, IngredientID: milk.ID, Quantity: "2"})
	require.NoError(suite.T(), err)

	items, err := suite.shopping.ListByUser(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), items, 1)

	deleted, err := suite.shopping.Delete(suite.ctx, other, mine.ID)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), deleted, "another user cannot delete the row")

	_, err = suite.shopping.SetChecked(suite.ctx, other, mine.ID, true)
	assert.ErrorIs(suite.T(), err, kitchen.ErrNotOnShoppingList)

	deleted, err = suite.shopping.Delete(suite.ctx, suite.userID, mine.ID)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), deleted)
}

func (suite *RepositoryTestSuite) TestInventoryStockToggle_PreservesLocationAndIngredient() {
	flour := suite.ingredient("flour")
	pantry := suite.location("Pantry", 0)
	qty := 2.0

	item := &kitchen.InventoryItem{
		UserID: suite.userID, IngredientID: flour.ID, LocationID: &pantry.ID,
		InStock: true, Quantity: &qty, Unit: "kg",
	}
	require.NoError(suite.T(), suite.inventory.Upsert(suite.ctx, item))
	originalID := item.ID

	marked, err := suite.inventory.MarkOutOfStock(suite.ctx, suite.userID, flour.ID)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), marked)
	require.NoError(suite.T(), suite.inventory.ConfirmInStock(suite.ctx, suite.userID, flour.ID))

	items, err := suite.inventory.ListByUser(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), items, 1)
	got := items[0]
	assert.Equal(suite.T(), originalID, got.ID)
	assert.True(suite.T(), got.InStock)
	assert.Equal(suite.T(), flour.ID, got.IngredientID)
	require.NotNil(suite.T(), got.LocationID)
	assert.Equal(suite.T(), pantry.ID, *got.LocationID)
	require.NotNil(suite.T(), got.Quantity)
	assert.InDelta(suite.T(), 2.0, *got.Quantity, 1e-9)
	assert.Equal(suite.T(), "flour", got.IngredientName)
}

func (suite *RepositoryTestSuite) TestInventoryMarkOutOfStock_DoesNotCreateRows() {
	salt := suite.ingredient("salt")

	marked, err := suite.inventory.MarkOutOfStock(suite.ctx, suite.userID, salt.ID)

	require.NoError(suite.T(), err)
	assert.False(suite.T(), marked)
	items, err := suite.inventory.ListByUser(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), items)
}

func (suite *RepositoryTestSuite) TestInventoryConfirmInStock_CreatesUnsortedRow() {
	rice := suite.ingredient("rice")

	require.NoError(suite.T(), suite.inventory.ConfirmInStock(suite.ctx, suite.userID, rice.ID))
	require.NoError(suite.T(), suite.inventory.ConfirmInStock(suite.ctx, suite.userID, rice.ID))

	items, err := suite.inventory.ListByUser(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), items, 1)
	assert.True(suite.T(), items[0].InStock)
	assert.True(suite.T(), items[0].Unsorted())
}

func (suite *RepositoryTestSuite) TestInventoryUpsert_KeepsQuantityWhenAbsent() {
	oil := suite.ingredient("olive oil")
	pantry := suite.location("Pantry", 0)
	fridge := suite.location("Fridge", 1)
	qty := 1.0

	require.NoError(suite.T(), suite.inventory.Upsert(suite.ctx, &kitchen.InventoryItem{
		UserID: suite.userID, IngredientID: oil.ID, LocationID: &pantry.ID, InStock: false, Quantity: &qty, Unit: "bottle",
	}))
	require.NoError(suite.T(), suite.inventory.Upsert(suite.ctx, &kitchen.InventoryItem{
		UserID: suite.userID, IngredientID: oil.ID, LocationID: &fridge.ID, InStock: true,
	}))

	items, err := suite.inventory.ListByUser(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), items, 1)
	assert.Equal(suite.T(), fridge.ID, *items[0].LocationID)
	assert.True(suite.T(), items[0].InStock)
	assert.Equal(suite.T(), "bottle", items[0].Unit)
	require.NotNil(suite.T(), items[0].Quantity)
}

func (suite *RepositoryTestSuite) TestLocationsAreOrdered() {
	suite.location("Freezer", 2)
	suite.location("Fridge", 1)
	suite.location("Pantry", 0)

	locations, err := suite.locations.ListByUser(suite.ctx, suite.userID)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), locations, 3)
	assert.Equal(suite.T(), []string{"Pantry", "Fridge", "Freezer"},
		[]string{locations[0].Name, locations[1].Name, locations[2].Name})
}

func (suite *RepositoryTestSuite) TestTransactor() {
	butter := suite.ingredient("butter")
	item, err := suite.shopping.Upsert(suite.ctx, &kitchen.ShoppingListItem{UserID: suite.userID, IngredientID: butter.ID})
	require.NoError(suite.T(), err)

	suite.Run("Error_ShouldRollBack", func() {
		boom := errors.New("boom")
		err := suite.tx.WithinTransaction(suite.ctx, func(ctx context.Context) error {
			require.NoError(suite.T(), suite.inventory.ConfirmInStock(ctx, suite.userID, butter.ID))
			_, err := suite.shopping.Delete(ctx, suite.userID, item.ID)
			require.NoError(suite.T(), err)
			return boom
		})
		assert.ErrorIs(suite.T(), err, boom)

		inventory, _ := suite.inventory.ListByUser(suite.ctx, suite.userID)
		shopping, _ := suite.shopping.ListByUser(suite.ctx, suite.userID)
		assert.Empty(suite.T(), inventory)
		assert.Len(suite.T(), shopping, 1)
	})

	suite.Run("Success_ShouldCommit", func() {
		err := suite.tx.WithinTransaction(suite.ctx, func(ctx context.Context) error {
			if err := suite.inventory.ConfirmInStock(ctx, suite.userID, butter.ID); err != nil {
				return err
			}
			_, err := suite.shopping.Delete(ctx, suite.userID, item.ID)
			return err
		})
		require.NoError(suite.T(), err)

		inventory, _ := suite.inventory.ListByUser(suite.ctx, suite.userID)
		shopping, _ := suite.shopping.ListByUser(suite.ctx, suite.userID)
		assert.Len(suite.T(), inventory, 1)
		assert.Empty(suite.T(), shopping)
	})
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
