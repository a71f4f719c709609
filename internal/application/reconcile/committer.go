package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Failure stages reported on ItemFailure
const (
	stageMatch     = "match"
	stageShopping  = "shopping_list"
	stageInventory = "inventory"
	stageLookup    = "lookup"
	stageMapping   = "mapping"
	stageMigrate   = "migrate"
)

// Committer writes a reviewed audit to the shopping list
type Committer struct {
	matcher     *Matcher
	shopping    outbound.ShoppingListRepository
	inventory   outbound.InventoryRepository
	concurrency int
	logger      *zap.Logger
}

// NewCommitter creates a new shopping list committer. concurrency bounds the
// number of item writes in flight.
func NewCommitter(
	matcher *Matcher,
	shopping outbound.ShoppingListRepository,
	inventory outbound.InventoryRepository,
	concurrency int,
	logger *zap.Logger,
) *Committer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Committer{
		matcher:     matcher,
		shopping:    shopping,
		inventory:   inventory,
		concurrency: concurrency,
		logger:      logger.Named("shopping-committer"),
	}
}

// commitTask is the single write for one canonical ingredient. indexes lists
// every audit position folded into it. Any out-of-stock occurrence turns the
// task into a shopping list write carrying the last out-of-stock values;
// otherwise it only confirms the stock flag and stocked are reported skipped.
type commitTask struct {
	ingredientID uuid.UUID
	indexes      []int
	item         kitchen.AuditItem
	inStock      bool
	stocked      []kitchen.AuditItem

	row     *kitchen.ShoppingListItem
	err     error
	stage   string
	syncErr error
}

// Commit upserts every out-of-stock item onto the user's shopping list. Items
// are written independently; one failure never stops the others, and every
// input item ends up committed, skipped or failed.
func (c *Committer) Commit(
	ctx context.Context,
	userID uuid.UUID,
	items []kitchen.AuditItem,
	recipeID *uuid.UUID,
	syncInventory bool,
) (*inbound.CommitResult, error) {
	if userID == uuid.Nil {
		return nil, errors.NewValidationError(kitchen.ErrMissingUserID.Error())
	}
	for i, item := range items {
		if !item.Matched() && kitchen.CleanName(item.Name) == "" {
			return nil, errors.NewValidationError(
				fmt.Sprintf("items[%d]: %s", i, kitchen.ErrBlankIngredientName),
			)
		}
	}

	snapshot, err := c.shopping.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewPersistenceError("load shopping list", err).
			WithMetadata("user_id", userID.String())
	}
	onList := make(map[uuid.UUID]bool, len(snapshot))
	for _, row := range snapshot {
		onList[row.IngredientID] = true
	}

	result := &inbound.CommitResult{
		Committed: []inbound.CommittedItem{},
		Skipped:   []kitchen.AuditItem{},
		Failed:    []inbound.ItemFailure{},
	}

	var (
		tasks  []*commitTask
		byIngr = make(map[uuid.UUID]*commitTask)
	)
	for i, item := range items {
		item.Index = i
		item.Name = kitchen.CleanName(item.Name)

		if item.InStock && !syncInventory {
			result.Skipped = append(result.Skipped, item)
			continue
		}

		ingredientID, failure := c.resolve(ctx, item)
		if failure != nil {
			result.Failed = append(result.Failed, *failure)
			continue
		}

		task, ok := byIngr[ingredientID]
		if !ok {
			task = &commitTask{ingredientID: ingredientID, inStock: true}
			byIngr[ingredientID] = task
			tasks = append(tasks, task)
		}
		task.indexes = append(task.indexes, i)
		if item.InStock {
			task.stocked = append(task.stocked, item)
		} else {
			task.inStock = false
			task.item = item
		}
	}

	c.run(ctx, userID, recipeID, syncInventory, tasks)

	for _, task := range tasks {
		c.collect(task, items, onList, result)
	}

	sort.Slice(result.Committed, func(i, j int) bool { return result.Committed[i].Index < result.Committed[j].Index })
	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].Index < result.Failed[j].Index })

	result.Status = commitStatus(result)
	result.Message = commitMessage(result)

	c.logger.Info("Committed audit to shopping list",
		zap.String("user_id", userID.String()),
		zap.String("status", string(result.Status)),
		zap.Int("added", result.Added),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)),
	)

	return result, nil
}

func (c *Committer) resolve(ctx context.Context, item kitchen.AuditItem) (uuid.UUID, *inbound.ItemFailure) {
	if item.Matched() {
		return *item.CanonicalID, nil
	}

	match, err := c.matcher.Resolve(ctx, item.Name, "")
	if err != nil {
		c.logger.Warn("Failed to resolve ingredient during commit",
			zap.Int("index", item.Index),
			zap.String("item", item.Name),
			zap.Error(err),
		)
		return uuid.Nil, &inbound.ItemFailure{
			Index:   item.Index,
			Name:    item.Name,
			Stage:   stageMatch,
			Code:    string(errors.GetCode(err)),
			Message: err.Error(),
		}
	}
	return match.Ingredient.ID, nil
}

// run executes tasks with bounded parallelism. Task goroutines never return
// an error, so one failed write does not cancel its siblings.
func (c *Committer) run(ctx context.Context, userID uuid.UUID, recipeID *uuid.UUID, syncInventory bool, tasks []*commitTask) {
	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if task.inStock {
				if err := c.inventory.ConfirmInStock(ctx, userID, task.ingredientID); err != nil {
					task.err, task.stage = err, stageInventory
				}
				return nil
			}

			row, err := c.shopping.Upsert(ctx, &kitchen.ShoppingListItem{
				UserID:       userID,
				IngredientID: task.ingredientID,
				Quantity:     task.item.Quantity,
				Unit:         task.item.Unit,
				Notes:        task.item.Notes,
				RecipeID:     recipeID,
			})
			if err != nil {
				task.err, task.stage = err, stageShopping
				return nil
			}
			task.row = row

			if syncInventory {
				if _, err := c.inventory.MarkOutOfStock(ctx, userID, task.ingredientID); err != nil {
					task.syncErr = err
				}
			}
			return nil
		})
	}

	_ = g.Wait()
}

func (c *Committer) collect(task *commitTask, items []kitchen.AuditItem, onList map[uuid.UUID]bool, result *inbound.CommitResult) {
	ingredientID := task.ingredientID

	if task.err != nil {
		c.logger.Error("Failed to commit item",
			zap.String("ingredient_id", ingredientID.String()),
			zap.String("stage", task.stage),
			zap.Error(task.err),
		)
		for _, idx := range task.indexes {
			result.Failed = append(result.Failed, inbound.ItemFailure{
				Index:        idx,
				Name:         kitchen.CleanName(items[idx].Name),
				IngredientID: &ingredientID,
				Stage:        task.stage,
				Code:         string(errors.CodePersistence),
				Message:      errors.NewPersistenceError("write "+task.stage, task.err).Details,
			})
		}
		return
	}

	if task.inStock {
		result.Skipped = append(result.Skipped, task.stocked...)
		return
	}

	if task.syncErr != nil {
		c.logger.Warn("Shopping list updated but inventory flag not cleared",
			zap.String("ingredient_id", ingredientID.String()),
			zap.Error(task.syncErr),
		)
		result.Failed = append(result.Failed, inbound.ItemFailure{
			Index:        task.item.Index,
			Name:         task.item.Name,
			IngredientID: &ingredientID,
			Stage:        stageInventory,
			Code:         string(errors.CodePersistence),
			Message:      "added to shopping list but inventory stock flag was not updated",
		})
	}

	action := inbound.ActionAdded
	if onList[ingredientID] {
		action = inbound.ActionUpdated
		result.Updated++
	} else {
		result.Added++
	}

	for _, idx := range task.indexes {
		entry := inbound.CommittedItem{
			Index:          idx,
			Name:           kitchen.CleanName(items[idx].Name),
			IngredientID:   ingredientID,
			ShoppingItemID: task.row.ID,
			Action:         action,
		}
		if idx != task.item.Index {
			entry.Action = inbound.ActionMerged
		}
		result.Committed = append(result.Committed, entry)
	}
}

// commitStatus counts each audit position once. A position that is both
// committed and failed, when the inventory flag could not be cleared, counts
// as failed.
func commitStatus(result *inbound.CommitResult) inbound.OutcomeStatus {
	failed := make(map[int]bool, len(result.Failed))
	for _, f := range result.Failed {
		failed[f.Index] = true
	}
	written := 0
	for _, c := range result.Committed {
		if !failed[c.Index] {
			written++
		}
	}
	for _, s := range result.Skipped {
		if !failed[s.Index] {
			written++
		}
	}
	return inbound.StatusOf(written, len(failed))
}

func commitMessage(result *inbound.CommitResult) string {
	parts := []string{
		fmt.Sprintf("%d added", result.Added),
		fmt.Sprintf("%d updated", result.Updated),
	}
	if len(result.Skipped) > 0 {
		parts = append(parts, fmt.Sprintf("%d already in stock", len(result.Skipped)))
	}
	msg := strings.Join(parts, ", ")
	if len(result.Failed) > 0 {
		msg += fmt.Sprintf("; %d failed: %s", len(result.Failed), failedNames(result.Failed))
	}
	return msg
}

func failedNames(failed []inbound.ItemFailure) string {
	names := make([]string, 0, len(failed))
	seen := make(map[string]bool, len(failed))
	for _, f := range failed {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		names = append(names, f.Name)
	}
	return strings.Join(names, ", ")
}
