package reconcile

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/alchemorsel/pantry/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type AuditorTestSuite struct {
	suite.Suite
	ctx     context.Context
	repos   *testutils.Repositories
	db      *testutils.DatabaseHelper
	auditor *Auditor
	userID  uuid.UUID
}

func (suite *AuditorTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.repos = testutils.SetupSQLiteRepositories(suite.T())
	suite.db = testutils.NewDatabaseHelper(suite.T(), suite.repos)
	logger := zaptest.NewLogger(suite.T())
	suite.auditor = NewAuditor(NewMatcher(suite.repos.Ingredients, logger), suite.repos.Inventory, logger)
	suite.userID = uuid.New()
}

func (suite *AuditorTestSuite) TestAudit() {
	suite.Run("NewIngredient_ShouldBeCreatedAndOutOfStock", func() {
		items, err := suite.auditor.Audit(suite.ctx, suite.userID, []kitchen.RecipeIngredient{
			{Name: "saffron", Quantity: "1", Unit: "pinch"},
		})

		suite.Require().NoError(err)
		suite.Require().Len(items, 1)
		suite.True(items[0].Matched())
		suite.True(items[0].NewIngredient)
		suite.False(items[0].InStock)
		suite.Equal("pinch", items[0].Unit)
		suite.Nil(items[0].Warning)
	})

	suite.Run("StockedIngredient_ShouldCarryInventoryRow", func() {
		fridge := suite.db.Locations(suite.userID, "Fridge")[0]
		stocked := suite.db.Stock(suite.userID, "milk", true, &fridge.ID)
		suite.db.Stock(suite.userID, "butter", false, &fridge.ID)

		items, err := suite.auditor.Audit(suite.ctx, suite.userID, []kitchen.RecipeIngredient{
			{Name: "Milk", Quantity: "1", Unit: "cup"},
			{Name: "Butter"},
		})

		suite.Require().NoError(err)
		suite.True(items[0].InStock)
		suite.Equal(stocked.ID, *items[0].InventoryItemID)
		suite.Equal(fridge.ID, *items[0].LocationID)
		suite.False(items[1].InStock)
		suite.NotNil(items[1].InventoryItemID)
	})

	suite.Run("OrderAndDuplicates_ShouldBePreserved", func() {
		items, err := suite.auditor.Audit(suite.ctx, suite.userID, []kitchen.RecipeIngredient{
			{Name: "onion"}, {Name: "garlic"}, {Name: "Onions"},
		})

		suite.Require().NoError(err)
		suite.Require().Len(items, 3)
		suite.Equal([]int{0, 1, 2}, []int{items[0].Index, items[1].Index, items[2].Index})
		suite.Equal(*items[0].CanonicalID, *items[2].CanonicalID)
		suite.Equal("Onions", items[2].Name)
	})

	suite.Run("OtherUsersStock_ShouldBeInvisible", func() {
		suite.db.Stock(uuid.New(), "paprika", true, nil)

		items, err := suite.auditor.Audit(suite.ctx, suite.userID, []kitchen.RecipeIngredient{{Name: "paprika"}})

		suite.Require().NoError(err)
		suite.False(items[0].InStock)
	})
}

func (suite *AuditorTestSuite) TestAudit_Validation() {
	suite.Run("MissingUser_ShouldFailWholeCall", func() {
		_, err := suite.auditor.Audit(suite.ctx, uuid.Nil, []kitchen.RecipeIngredient{{Name: "salt"}})
		suite.True(errors.Is(err, errors.CodeValidationFailed))
	})

	suite.Run("BlankName_ShouldNameTheItem", func() {
		_, err := suite.auditor.Audit(suite.ctx, suite.userID, []kitchen.RecipeIngredient{{Name: "salt"}, {Name: " "}})
		suite.Require().Error(err)
		suite.Contains(err.Error(), "ingredients[1]")
	})
}

func TestAuditorTestSuite(t *testing.T) {
	suite.Run(t, new(AuditorTestSuite))
}

func TestAuditor_LookupFailureFlagsOnlyThatItem(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userID := uuid.New()
	flour, err := kitchen.NewCanonicalIngredient("flour", "")
	require.NoError(t, err)

	ingredients := new(testutils.MockIngredientRepository)
	ingredients.On("FindByName", mock.Anything, "flour").Return(flour, nil)
	ingredients.On("FindByName", mock.Anything, "yeast").Return(nil, stderrors.New("connection reset"))

	inventory := new(testutils.MockInventoryRepository)
	inventory.On("ListByUser", mock.Anything, userID).Return([]kitchen.InventoryItem{
		{ID: uuid.New(), UserID: userID, IngredientID: flour.ID, InStock: true},
	}, nil)

	logger := zaptest.NewLogger(t)
	auditor := NewAuditor(NewMatcher(ingredients, logger), inventory, logger)

	// Act
	items, err := auditor.Audit(ctx, userID, []kitchen.RecipeIngredient{{Name: "flour"}, {Name: "yeast"}})

	// Assert
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].InStock)
	assert.False(t, items[0].NeedsResolution)

	assert.Nil(t, items[1].CanonicalID)
	assert.False(t, items[1].InStock)
	assert.True(t, items[1].NeedsResolution)
	require.NotNil(t, items[1].Warning)
	assert.Equal(t, string(errors.CodeMatchAmbiguous), items[1].Warning.Code)
}

func TestAuditor_InventoryUnavailable(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userID := uuid.New()
	repos := testutils.SetupSQLiteRepositories(t)

	inventory := new(testutils.MockInventoryRepository)
	inventory.On("ListByUser", mock.Anything, userID).Return(nil, stderrors.New("timeout"))

	logger := zaptest.NewLogger(t)
	auditor := NewAuditor(NewMatcher(repos.Ingredients, logger), inventory, logger)

	// Act
	items, err := auditor.Audit(ctx, userID, []kitchen.RecipeIngredient{{Name: "rice"}})

	// Assert
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Matched())
	assert.False(t, items[0].InStock)
	require.NotNil(t, items[0].Warning)
	assert.Equal(t, string(errors.CodePersistence), items[0].Warning.Code)
}
