package reconcile

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/alchemorsel/pantry/internal/application/reconcile"

// Options tunes the reconciliation service
type Options struct {
	CommitConcurrency   int
	ClassifierTimeout   time.Duration
	GuardTTL            time.Duration
	DefaultLocationName string
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		CommitConcurrency:   4,
		ClassifierTimeout:   5 * time.Second,
		GuardTTL:            30 * time.Second,
		DefaultLocationName: kitchen.DefaultLocationName,
	}
}

// Dependencies are the driven ports the service needs
type Dependencies struct {
	Ingredients outbound.IngredientRepository
	Inventory   outbound.InventoryRepository
	Shopping    outbound.ShoppingListRepository
	Locations   outbound.LocationRepository
	Transactor  outbound.Transactor
	Guard       outbound.SubmissionGuard
	Classifier  outbound.LocationClassifier
	Metrics     outbound.ReconciliationMetrics
}

// Service implements the reconciliation use cases
type Service struct {
	auditor     *Auditor
	committer   *Committer
	categorizer *Categorizer
	migrator    *Migrator

	inventory outbound.InventoryRepository
	shopping  outbound.ShoppingListRepository
	locations outbound.LocationRepository
	guard     outbound.SubmissionGuard
	metrics   outbound.ReconciliationMetrics

	validate *validator.Validate
	guardTTL time.Duration
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewService creates a new reconciliation service
func NewService(deps Dependencies, opts Options, logger *zap.Logger) inbound.ReconciliationService {
	defaults := DefaultOptions()
	if opts.CommitConcurrency <= 0 {
		opts.CommitConcurrency = defaults.CommitConcurrency
	}
	if opts.ClassifierTimeout <= 0 {
		opts.ClassifierTimeout = defaults.ClassifierTimeout
	}
	if opts.GuardTTL <= 0 {
		opts.GuardTTL = defaults.GuardTTL
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}

	matcher := NewMatcher(deps.Ingredients, logger)

	return &Service{
		auditor:     NewAuditor(matcher, deps.Inventory, logger),
		committer:   NewCommitter(matcher, deps.Shopping, deps.Inventory, opts.CommitConcurrency, logger),
		categorizer: NewCategorizer(deps.Classifier, opts.ClassifierTimeout, opts.DefaultLocationName, deps.Metrics, logger),
		migrator:    NewMigrator(deps.Transactor, deps.Shopping, deps.Inventory, deps.Locations, logger),
		inventory:   deps.Inventory,
		shopping:    deps.Shopping,
		locations:   deps.Locations,
		guard:       deps.Guard,
		metrics:     deps.Metrics,
		validate:    newValidator(),
		guardTTL:    opts.GuardTTL,
		tracer:      otel.Tracer(tracerName),
		logger:      logger.Named("reconciliation-service"),
	}
}

// AuditRecipe reports which recipe ingredients the user already has
func (s *Service) AuditRecipe(ctx context.Context, cmd inbound.AuditRecipeCommand) ([]kitchen.AuditItem, error) {
	ctx, span := s.startSpan(ctx, "AuditRecipe", cmd.UserID, attribute.Int("ingredients", len(cmd.Ingredients)))
	defer span.End()

	if err := s.validate.Struct(cmd); err != nil {
		return nil, s.fail(span, toAppError(err))
	}

	items, err := s.auditor.Audit(ctx, cmd.UserID, cmd.Ingredients)
	if err != nil {
		return nil, s.fail(span, err)
	}

	unresolved := 0
	for _, item := range items {
		if item.NeedsResolution {
			unresolved++
		}
	}
	s.metrics.ObserveAudit(len(items), unresolved)
	span.SetAttributes(attribute.Int("unresolved", unresolved))

	return items, nil
}

// CommitAudit writes the out-of-stock items of a reviewed audit to the
// shopping list
func (s *Service) CommitAudit(ctx context.Context, cmd inbound.CommitAuditCommand) (*inbound.CommitResult, error) {
	ctx, span := s.startSpan(ctx, "CommitAudit", cmd.UserID, attribute.Int("items", len(cmd.Items)))
	defer span.End()

	if err := s.validate.Struct(cmd); err != nil {
		return nil, s.fail(span, toAppError(err))
	}

	release, err := s.acquire(ctx, "commit", cmd.UserID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	defer release()

	result, err := s.committer.Commit(ctx, cmd.UserID, cmd.Items, cmd.RecipeID, cmd.SyncInventory)
	if err != nil {
		s.metrics.ObserveCommit(string(inbound.StatusFailed), 0, 0, len(cmd.Items))
		return nil, s.fail(span, err)
	}

	s.metrics.ObserveCommit(string(result.Status), result.Added, result.Updated, len(result.Failed))
	span.SetAttributes(attribute.String("status", string(result.Status)))
	return result, nil
}

// CategorizeCheckout proposes a location for each checked item name
func (s *Service) CategorizeCheckout(ctx context.Context, checkedItems []string, locations []kitchen.Location) (*kitchen.LocationMapping, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.CategorizeCheckout",
		trace.WithAttributes(attribute.Int("items", len(checkedItems)), attribute.Int("locations", len(locations))))
	defer span.End()

	mapping, err := s.categorizer.Categorize(ctx, checkedItems, locations)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.Bool("used_fallback", mapping.UsedFallback))
	return mapping, nil
}

// StartCheckout loads the user's checked items and locations and proposes a
// mapping between them
func (s *Service) StartCheckout(ctx context.Context, userID uuid.UUID) (*inbound.CheckoutProposal, error) {
	ctx, span := s.startSpan(ctx, "StartCheckout", userID)
	defer span.End()

	if userID == uuid.Nil {
		return nil, s.fail(span, errors.NewValidationError(kitchen.ErrMissingUserID.Error()))
	}

	release, err := s.acquire(ctx, "checkout", userID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	defer release()

	list, err := s.shopping.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(span, errors.NewPersistenceError("load shopping list", err))
	}
	checked := make([]kitchen.ShoppingListItem, 0, len(list))
	for _, item := range list {
		if item.IsChecked {
			checked = append(checked, item)
		}
	}

	locations, err := s.locations.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(span, errors.NewPersistenceError("load locations", err))
	}

	mapping, err := s.categorizer.CategorizeItems(ctx, checked, locations)
	if err != nil {
		return nil, s.fail(span, err)
	}

	return &inbound.CheckoutProposal{
		Items:     checked,
		Locations: locations,
		Mapping:   *mapping,
	}, nil
}

// MigrateToInventory moves the given items into inventory using the
// confirmed mapping
func (s *Service) MigrateToInventory(ctx context.Context, cmd inbound.MigrateCommand) (*inbound.MigrationResult, error) {
	ctx, span := s.startSpan(ctx, "MigrateToInventory", cmd.UserID, attribute.Int("items", len(cmd.Items)))
	defer span.End()

	if err := s.validate.Struct(cmd); err != nil {
		return nil, s.fail(span, toAppError(err))
	}

	release, err := s.acquire(ctx, "checkout", cmd.UserID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	defer release()

	result, err := s.migrator.Migrate(ctx, cmd.UserID, cmd.Items, cmd.Mapping)
	if err != nil {
		s.metrics.ObserveMigration(string(inbound.StatusFailed), 0, len(cmd.Items))
		return nil, s.fail(span, err)
	}

	s.metrics.ObserveMigration(string(result.Status), len(result.Moved), len(result.Failed))
	span.SetAttributes(attribute.String("status", string(result.Status)))
	return result, nil
}

// GetShoppingList returns the user's active shopping list
func (s *Service) GetShoppingList(ctx context.Context, userID uuid.UUID) ([]kitchen.ShoppingListItem, error) {
	if userID == uuid.Nil {
		return nil, errors.NewValidationError(kitchen.ErrMissingUserID.Error())
	}
	items, err := s.shopping.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load shopping list", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, errors.NewPersistenceError("load shopping list", err)
	}
	return items, nil
}

// ToggleShoppingItem sets the checked flag of one shopping list row
func (s *Service) ToggleShoppingItem(ctx context.Context, userID, itemID uuid.UUID, checked bool) (*kitchen.ShoppingListItem, error) {
	if userID == uuid.Nil {
		return nil, errors.NewValidationError(kitchen.ErrMissingUserID.Error())
	}
	if itemID == uuid.Nil {
		return nil, errors.NewValidationError("item id is required")
	}

	item, err := s.shopping.SetChecked(ctx, userID, itemID, checked)
	if err != nil {
		if stderrors.Is(err, kitchen.ErrNotOnShoppingList) {
			return nil, errors.NewNotFoundError("Shopping list item").WithCause(err)
		}
		s.logger.Error("Failed to toggle shopping item",
			zap.String("user_id", userID.String()),
			zap.String("item_id", itemID.String()),
			zap.Error(err),
		)
		return nil, errors.NewPersistenceError("update shopping list item", err)
	}
	return item, nil
}

// GetInventory returns the user's inventory rows
func (s *Service) GetInventory(ctx context.Context, userID uuid.UUID) ([]kitchen.InventoryItem, error) {
	if userID == uuid.Nil {
		return nil, errors.NewValidationError(kitchen.ErrMissingUserID.Error())
	}
	items, err := s.inventory.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load inventory", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, errors.NewPersistenceError("load inventory", err)
	}
	return items, nil
}

// GetLocations returns the user's storage locations in display order
func (s *Service) GetLocations(ctx context.Context, userID uuid.UUID) ([]kitchen.Location, error) {
	if userID == uuid.Nil {
		return nil, errors.NewValidationError(kitchen.ErrMissingUserID.Error())
	}
	locations, err := s.locations.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load locations", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, errors.NewPersistenceError("load locations", err)
	}
	return locations, nil
}

// acquire takes the per-user submission guard for op. A guard backend
// failure is logged and the submission proceeds, since every write is an
// idempotent upsert.
func (s *Service) acquire(ctx context.Context, op string, userID uuid.UUID) (func(), error) {
	if s.guard == nil {
		return func() {}, nil
	}

	release, err := s.guard.Acquire(ctx, op+":"+userID.String(), s.guardTTL)
	switch {
	case err == nil:
		return release, nil
	case stderrors.Is(err, kitchen.ErrSubmissionInFlight):
		s.logger.Info("Rejected duplicate submission",
			zap.String("operation", op),
			zap.String("user_id", userID.String()),
		)
		return nil, errors.NewSubmissionInFlightError(op).WithCause(err)
	default:
		s.logger.Warn("Submission guard unavailable, continuing without it",
			zap.String("operation", op),
			zap.Error(err),
		)
		return func() {}, nil
	}
}

func (s *Service) startSpan(ctx context.Context, name string, userID uuid.UUID, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("user_id", userID.String()))
	return s.tracer.Start(ctx, "reconcile."+name, trace.WithAttributes(attrs...))
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
