package reconcile

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/alchemorsel/pantry/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

// failingInventory fails upserts for one ingredient
type failingInventory struct {
	outbound.InventoryRepository
	failFor uuid.UUID
}

func (f failingInventory) Upsert(ctx context.Context, item *kitchen.InventoryItem) error {
	if item.IngredientID == f.failFor {
		return stderrors.New("constraint failed")
	}
	return f.InventoryRepository.Upsert(ctx, item)
}

type MigratorTestSuite struct {
	suite.Suite
	ctx         context.Context
	repos       *testutils.Repositories
	db          *testutils.DatabaseHelper
	categorizer *Categorizer
	migrator    *Migrator
	check       *testutils.ReconcileAssertions
	userID      uuid.UUID
}

func (suite *MigratorTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.repos = testutils.SetupSQLiteRepositories(suite.T())
	suite.db = testutils.NewDatabaseHelper(suite.T(), suite.repos)
	logger := zaptest.NewLogger(suite.T())
	suite.categorizer = NewCategorizer(nil, 0, "Pantry", nil, logger)
	suite.migrator = NewMigrator(suite.repos.Transactor, suite.repos.Shopping, suite.repos.Inventory, suite.repos.Locations, logger)
	suite.check = testutils.NewReconcileAssertions(suite.T())
	suite.userID = uuid.New()
}

func (suite *MigratorTestSuite) propose(items []kitchen.ShoppingListItem) kitchen.LocationMapping {
	locations, err := suite.repos.Locations.ListByUser(suite.ctx, suite.userID)
	suite.Require().NoError(err)
	mapping, err := suite.categorizer.CategorizeItems(suite.ctx, items, locations)
	suite.Require().NoError(err)
	return *mapping
}

func (suite *MigratorTestSuite) TestMigrate_MovesItemsAndClearsList() {
	// Arrange
	locs := suite.db.Locations(suite.userID, "Pantry", "Fridge")
	milk := suite.db.ListItem(suite.userID, "milk", "2", true)
	flour := suite.db.ListItem(suite.userID, "flour", "1 1/2", true)
	items := []kitchen.ShoppingListItem{milk, flour}
	mapping := suite.propose(items)
	mapping.Assign("milk", locs[1])

	// Act
	result, err := suite.migrator.Migrate(suite.ctx, suite.userID, items, mapping)

	// Assert
	suite.Require().NoError(err)
	suite.check.EveryMoveAccounted(result, 2)
	suite.Equal(inbound.StatusSucceeded, result.Status)
	suite.Empty(suite.db.ShoppingByName(suite.userID))

	stock := suite.db.InventoryByName(suite.userID)
	suite.True(stock["milk"].InStock)
	suite.Equal(locs[1].ID, *stock["milk"].LocationID)
	suite.Equal(locs[0].ID, *stock["flour"].LocationID)
	suite.Require().NotNil(stock["flour"].Quantity)
	suite.InDelta(1.5, *stock["flour"].Quantity, 0.0001)
}

func (suite *MigratorTestSuite) TestMigrate_RestocksExistingRowInPlace() {
	pantry := suite.db.Locations(suite.userID, "Pantry", "Fridge")[0]
	existing := suite.db.Stock(suite.userID, "butter", false, nil)
	butter := suite.db.ListItem(suite.userID, "butter", "1", true)

	result, err := suite.migrator.Migrate(suite.ctx, suite.userID, []kitchen.ShoppingListItem{butter},
		suite.propose([]kitchen.ShoppingListItem{butter}))

	suite.Require().NoError(err)
	suite.True(result.Success)
	row := suite.db.InventoryByName(suite.userID)["butter"]
	suite.Equal(existing.ID, row.ID)
	suite.True(row.InStock)
	suite.Equal(pantry.ID, *row.LocationID)
}

func (suite *MigratorTestSuite) TestMigrate_MissingMappingFailsOnlyThatItem() {
	suite.db.Locations(suite.userID, "Pantry")
	eggs := suite.db.ListItem(suite.userID, "eggs", "12", true)
	jam := suite.db.ListItem(suite.userID, "jam", "1", true)
	mapping := suite.propose([]kitchen.ShoppingListItem{eggs})

	result, err := suite.migrator.Migrate(suite.ctx, suite.userID, []kitchen.ShoppingListItem{eggs, jam}, mapping)

	suite.Require().NoError(err)
	suite.check.EveryMoveAccounted(result, 2)
	suite.Equal(inbound.StatusPartial, result.Status)
	suite.Equal(string(errors.CodeMappingMissing), result.Failed[0].Code)
	suite.Equal("jam", result.Failed[0].Name)
	suite.Equal("1 of 2 items moved; 1 failed: jam", result.Message)
	suite.Contains(suite.db.ShoppingByName(suite.userID), "jam")
}

func (suite *MigratorTestSuite) TestMigrate_ForeignLocationIsRejected() {
	suite.db.Locations(suite.userID, "Pantry")
	stranger := suite.db.Locations(uuid.New(), "Their Pantry")[0]
	oil := suite.db.ListItem(suite.userID, "olive oil", "1", true)
	mapping := suite.propose([]kitchen.ShoppingListItem{oil})
	mapping.Entries[0].LocationID = &stranger.ID

	result, err := suite.migrator.Migrate(suite.ctx, suite.userID, []kitchen.ShoppingListItem{oil}, mapping)

	suite.Require().NoError(err)
	suite.Equal(inbound.StatusFailed, result.Status)
	suite.Equal(string(errors.CodeUnknownLocation), result.Failed[0].Code)
	suite.Empty(suite.db.InventoryByName(suite.userID))
}

func (suite *MigratorTestSuite) TestMigrate_UnassignedItemsArriveUnsorted() {
	tea := suite.db.ListItem(suite.userID, "tea", "1", true)
	mapping := suite.propose([]kitchen.ShoppingListItem{tea})
	suite.Require().True(mapping.NoLocationAvailable)

	result, err := suite.migrator.Migrate(suite.ctx, suite.userID, []kitchen.ShoppingListItem{tea}, mapping)

	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.True(suite.db.InventoryByName(suite.userID)["tea"].Unsorted())
}

func (suite *MigratorTestSuite) TestMigrate_EntryWithoutLocationNeedsUnassignedUser() {
	for _, source := range []kitchen.AssignmentSource{kitchen.SourceClassifier, kitchen.SourceUser, kitchen.SourceUnassigned} {
		suite.Run(string(source), func() {
			// Arrange
			userID := uuid.New()
			suite.db.Locations(userID, "Pantry", "Fridge")
			milk := suite.db.ListItem(userID, "milk", "1", true)
			mapping := kitchen.LocationMapping{Entries: []kitchen.LocationAssignment{
				{ItemID: &milk.ID, Item: "milk", Source: source},
			}}

			// Act
			result, err := suite.migrator.Migrate(suite.ctx, userID, []kitchen.ShoppingListItem{milk}, mapping)

			// Assert
			suite.Require().NoError(err)
			suite.Equal(inbound.StatusFailed, result.Status)
			suite.Require().Len(result.Failed, 1)
			suite.Equal(string(errors.CodeMappingMissing), result.Failed[0].Code)
			suite.Empty(suite.db.InventoryByName(userID))
			suite.Contains(suite.db.ShoppingByName(userID), "milk")
		})
	}
}

func (suite *MigratorTestSuite) TestMigrate_UncheckedItemIsRejected() {
	// Arrange
	suite.db.Locations(suite.userID, "Pantry", "Fridge")
	milk := suite.db.ListItem(suite.userID, "milk", "2", false)
	mapping := suite.propose([]kitchen.ShoppingListItem{milk})

	// Act
	result, err := suite.migrator.Migrate(suite.ctx, suite.userID, []kitchen.ShoppingListItem{milk}, mapping)

	// Assert
	suite.Require().NoError(err)
	suite.check.EveryMoveAccounted(result, 1)
	suite.Equal(inbound.StatusFailed, result.Status)
	suite.Equal(string(errors.CodeValidationFailed), result.Failed[0].Code)
	suite.Equal(kitchen.ErrNotChecked.Error(), result.Failed[0].Message)
	suite.Empty(suite.db.InventoryByName(suite.userID))
	suite.Contains(suite.db.ShoppingByName(suite.userID), "milk")
}

func (suite *MigratorTestSuite) TestMigrate_ItemNoLongerOnList() {
	suite.db.Locations(suite.userID, "Pantry")
	ghost := kitchen.ShoppingListItem{ID: uuid.New(), Name: "ghost pepper"}

	result, err := suite.migrator.Migrate(suite.ctx, suite.userID, []kitchen.ShoppingListItem{ghost},
		kitchen.LocationMapping{Entries: []kitchen.LocationAssignment{{Item: "ghost pepper"}}})

	suite.Require().NoError(err)
	suite.Equal(string(errors.CodeNotFound), result.Failed[0].Code)
}

func (suite *MigratorTestSuite) TestMigrate_StorageFailureRollsBackThatItem() {
	// Arrange
	suite.db.Locations(suite.userID, "Pantry")
	cheese := suite.db.ListItem(suite.userID, "cheese", "1", true)
	bread := suite.db.ListItem(suite.userID, "bread", "1", true)
	items := []kitchen.ShoppingListItem{cheese, bread}
	mapping := suite.propose(items)

	migrator := NewMigrator(suite.repos.Transactor, suite.repos.Shopping,
		failingInventory{InventoryRepository: suite.repos.Inventory, failFor: cheese.IngredientID},
		suite.repos.Locations, zaptest.NewLogger(suite.T()))

	// Act
	result, err := migrator.Migrate(suite.ctx, suite.userID, items, mapping)

	// Assert
	suite.Require().NoError(err)
	suite.Equal(inbound.StatusPartial, result.Status)
	suite.Require().Len(result.Failed, 1)
	suite.Equal("cheese", result.Failed[0].Name)
	suite.Equal(string(errors.CodePersistence), result.Failed[0].Code)

	list := suite.db.ShoppingByName(suite.userID)
	suite.Contains(list, "cheese")
	suite.NotContains(list, "bread")
	suite.NotContains(suite.db.InventoryByName(suite.userID), "cheese")
}

func (suite *MigratorTestSuite) TestMigrate_Validation() {
	_, err := suite.migrator.Migrate(suite.ctx, suite.userID, nil, kitchen.LocationMapping{})
	suite.True(errors.Is(err, errors.CodeValidationFailed))
}

func TestMigratorTestSuite(t *testing.T) {
	suite.Run(t, new(MigratorTestSuite))
}
