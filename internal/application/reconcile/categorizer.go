package reconcile

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Classification outcomes recorded in metrics
const (
	outcomeOK      = "ok"
	outcomePartial = "partial"
	outcomeError   = "error"
	outcomeTimeout = "timeout"
	outcomeSkipped = "skipped"
)

const (
	noticeFallback    = "Some items were auto-sorted using defaults"
	noticeUnavailable = "Auto-sorting is unavailable right now; items were placed in default locations"
	noticeNoLocations = "You have no storage locations yet; add one to put these items away"
)

// checkoutItem is an item being categorised, with its shopping list row id
// when known.
type checkoutItem struct {
	id   *uuid.UUID
	name string
}

// Categorizer proposes a storage location for each checked-off item
type Categorizer struct {
	classifier      outbound.LocationClassifier
	timeout         time.Duration
	defaultLocation string
	metrics         outbound.ReconciliationMetrics
	logger          *zap.Logger
}

// NewCategorizer creates a new checkout categorizer. classifier may be nil,
// in which case every item gets the default location.
func NewCategorizer(
	classifier outbound.LocationClassifier,
	timeout time.Duration,
	defaultLocation string,
	metrics outbound.ReconciliationMetrics,
	logger *zap.Logger,
) *Categorizer {
	if defaultLocation == "" {
		defaultLocation = kitchen.DefaultLocationName
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Categorizer{
		classifier:      classifier,
		timeout:         timeout,
		defaultLocation: defaultLocation,
		metrics:         metrics,
		logger:          logger.Named("checkout-categorizer"),
	}
}

// Categorize maps item names to the given locations. Every item gets an
// entry; classifier failures only change how entries are sourced.
func (c *Categorizer) Categorize(ctx context.Context, itemNames []string, locations []kitchen.Location) (*kitchen.LocationMapping, error) {
	items := make([]checkoutItem, len(itemNames))
	for i, name := range itemNames {
		items[i] = checkoutItem{name: name}
	}
	return c.categorize(ctx, items, locations)
}

// CategorizeItems maps shopping list rows to locations, keeping row ids on
// the entries.
func (c *Categorizer) CategorizeItems(ctx context.Context, rows []kitchen.ShoppingListItem, locations []kitchen.Location) (*kitchen.LocationMapping, error) {
	items := make([]checkoutItem, len(rows))
	for i := range rows {
		id := rows[i].ID
		items[i] = checkoutItem{id: &id, name: rows[i].Name}
	}
	return c.categorize(ctx, items, locations)
}

func (c *Categorizer) categorize(ctx context.Context, items []checkoutItem, locations []kitchen.Location) (*kitchen.LocationMapping, error) {
	for i := range items {
		items[i].name = kitchen.CleanName(items[i].name)
		if items[i].name == "" {
			return nil, errors.NewValidationError(fmt.Sprintf("items[%d]: %s", i, kitchen.ErrBlankItemName)).
				WithCause(kitchen.ErrBlankItemName)
		}
	}

	mapping := &kitchen.LocationMapping{Entries: make([]kitchen.LocationAssignment, 0, len(items))}

	if len(locations) == 0 {
		for _, item := range items {
			mapping.Entries = append(mapping.Entries, kitchen.LocationAssignment{
				ItemID: item.id,
				Item:   item.name,
				Source: kitchen.SourceUnassigned,
			})
		}
		if len(items) > 0 {
			mapping.NoLocationAvailable = true
			mapping.Notice = noticeNoLocations
		}
		c.metrics.ObserveClassification(outcomeSkipped, 0)
		return mapping, nil
	}

	sorted := kitchen.SortLocations(locations)
	answer, classifyErr := c.classify(ctx, items, sorted)

	fallback, _ := kitchen.DefaultLocation(sorted, c.defaultLocation)
	for _, item := range items {
		entry := kitchen.LocationAssignment{ItemID: item.id, Item: item.name}

		if loc, ok := c.pick(answer, item.name, sorted); ok {
			id := loc.ID
			entry.LocationID = &id
			entry.LocationName = loc.Name
			entry.Source = kitchen.SourceClassifier
		} else {
			id := fallback.ID
			entry.LocationID = &id
			entry.LocationName = fallback.Name
			entry.Source = kitchen.SourceFallback
			mapping.UsedFallback = true
		}

		mapping.Entries = append(mapping.Entries, entry)
	}

	switch {
	case classifyErr != nil && len(items) > 0:
		mapping.Notice = noticeUnavailable
	case mapping.UsedFallback:
		mapping.Notice = noticeFallback
	}

	return mapping, nil
}

// classify asks the classifier under a deadline. Errors and panics are
// logged and reported as a nil answer.
func (c *Categorizer) classify(ctx context.Context, items []checkoutItem, locations []kitchen.Location) (answer map[string]string, err error) {
	if len(items) == 0 {
		return nil, nil
	}
	if c.classifier == nil {
		c.metrics.ObserveClassification(outcomeSkipped, 0)
		return nil, errors.NewClassificationUnavailableError("classifier", stderrors.New("no classifier configured"))
	}

	names := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item.name] {
			continue
		}
		seen[item.name] = true
		names = append(names, item.name)
	}
	locationNames := make([]string, len(locations))
	for i, loc := range locations {
		locationNames[i] = loc.Name
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			answer = nil
			err = errors.NewClassificationUnavailableError("classifier", fmt.Errorf("classifier panicked: %v", r))
		}

		outcome := outcomeOK
		switch {
		case err != nil && stderrors.Is(callCtx.Err(), context.DeadlineExceeded):
			outcome = outcomeTimeout
		case err != nil:
			outcome = outcomeError
		case len(answer) < len(names):
			outcome = outcomePartial
		}
		c.metrics.ObserveClassification(outcome, time.Since(start))

		if err != nil {
			c.logger.Warn("Location classifier unavailable, using defaults",
				zap.Int("items", len(names)),
				zap.String("outcome", outcome),
				zap.Error(err),
			)
		}
	}()

	answer, err = c.classifier.ClassifyItemsToLocations(callCtx, names, locationNames)
	if err != nil {
		return nil, errors.NewClassificationUnavailableError("classifier", err)
	}
	return answer, nil
}

// pick validates the classifier's answer for one item against the user's
// locations. Answer keys are matched exactly, then by normalised name.
func (c *Categorizer) pick(answer map[string]string, item string, locations []kitchen.Location) (kitchen.Location, bool) {
	if len(answer) == 0 {
		return kitchen.Location{}, false
	}

	locName, ok := answer[item]
	if !ok {
		key := kitchen.NormalizeName(item)
		for name, candidate := range answer {
			if kitchen.NormalizeName(name) == key {
				locName, ok = candidate, true
				break
			}
		}
	}
	if !ok {
		return kitchen.Location{}, false
	}

	loc, found := kitchen.FindLocationByName(locations, locName)
	if !found {
		c.logger.Debug("Classifier proposed unknown location",
			zap.String("item", item),
			zap.String("location", locName),
		)
	}
	return loc, found
}
