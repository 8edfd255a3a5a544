package actions

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	contractx "github.com/napatw/storeops/agent/contract"
	"github.com/napatw/storeops/pkg/commercedb"
)

const (
	defaultRestockQuantity = 50
	defaultDiscountPct     = 10.0
)

type executorImpl struct {
	data contractx.DataStore
}

// NewExecutor builds the approved-action applier.
func NewExecutor(data contractx.DataStore) contractx.ActionExecutor {
	return &executorImpl{data: data}
}

// Execute applies approved proposals in their original proposal order. Each
// action is isolated: a failure produces a result line and the batch moves on.
func (e *executorImpl) Execute(ctx context.Context, proposals []contractx.ActionProposal, approvedIDs []string) []string {
	approved := make(map[string]struct{}, len(approvedIDs))
	for _, id := range approvedIDs {
		approved[id] = struct{}{}
	}

	var results []string
	for _, p := range proposals {
		if _, ok := approved[p.ID]; !ok {
			continue
		}
		result := e.run(ctx, p)
		log.Info().Str("action_id", p.ID).Str("type", string(p.Type)).Str("result", result).Msg("action executed")
		results = append(results, result)
	}
	return results
}

func (e *executorImpl) run(ctx context.Context, p contractx.ActionProposal) string {
	var result string
	var err error

	switch p.Type {
	case contractx.ActionRestock:
		result, err = e.restock(ctx, p.Params)
	case contractx.ActionPauseCampaign:
		result, err = e.pauseCampaign(ctx, p.Params)
	case contractx.ActionDiscount:
		result, err = e.discount(ctx, p.Params)
	case contractx.ActionCreateTicket:
		result, err = e.createTicket(ctx, p.Params)
	case contractx.ActionResolveTicket:
		result, err = e.resolveTicket(ctx, p.Params)
	default:
		return fmt.Sprintf("⚠ Unknown action: %s", p.Type)
	}

	if err != nil {
		return fmt.Sprintf("✗ Failed: %s - %v", p.Description, err)
	}
	return result
}

func (e *executorImpl) restock(ctx context.Context, params map[string]any) (string, error) {
	productID, err := paramInt(params, "product_id")
	if err != nil {
		return "", err
	}
	quantity := paramIntDefault(params, "quantity", defaultRestockQuantity)

	product, err := e.data.GetProduct(ctx, productID)
	if err != nil {
		if commercedb.IsNotFound(err) {
			return fmt.Sprintf("❌ Product ID %d not found.", productID), nil
		}
		return "", err
	}

	var oldStock int64
	if item, err := e.data.GetProductInventory(ctx, productID); err == nil {
		oldStock = item.Stock
	} else if !commercedb.IsNotFound(err) {
		return "", err
	}

	if err := e.data.UpdateStock(ctx, productID, quantity); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Restocked '%s': %d → %d units (+%d)", product.Name, oldStock, oldStock+quantity, quantity), nil
}

func (e *executorImpl) pauseCampaign(ctx context.Context, params map[string]any) (string, error) {
	campaignID, err := paramInt(params, "campaign_id")
	if err != nil {
		return "", err
	}

	campaign, err := e.data.GetCampaign(ctx, campaignID)
	if err != nil {
		if commercedb.IsNotFound(err) {
			return fmt.Sprintf("❌ Campaign ID %d not found.", campaignID), nil
		}
		return "", err
	}
	if err := e.data.PauseCampaign(ctx, campaignID); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Paused campaign '%s'", campaign.Name), nil
}

func (e *executorImpl) discount(ctx context.Context, params map[string]any) (string, error) {
	productID, err := paramInt(params, "product_id")
	if err != nil {
		return "", err
	}
	percent := paramFloatDefault(params, "percent", defaultDiscountPct)

	product, err := e.data.GetProduct(ctx, productID)
	if err != nil {
		if commercedb.IsNotFound(err) {
			return fmt.Sprintf("❌ Product ID %d not found.", productID), nil
		}
		return "", err
	}
	if err := e.data.ApplyDiscount(ctx, productID, percent); err != nil {
		return "", err
	}
	newPrice := math.Round(product.Price*(1-percent/100)*100) / 100
	return fmt.Sprintf("✅ Applied %g%% discount on '%s': $%.2f → $%.2f", percent, product.Name, product.Price, newPrice), nil
}

func (e *executorImpl) createTicket(ctx context.Context, params map[string]any) (string, error) {
	subject := paramStrDefault(params, "subject", "New Ticket")
	description := paramStrDefault(params, "description", "")
	category := paramStrDefault(params, "category", "general")
	priority := paramStrDefault(params, "priority", "medium")

	if err := e.data.CreateTicket(ctx, subject, description, category, priority); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Created %s priority ticket: '%s'", priority, subject), nil
}

func (e *executorImpl) resolveTicket(ctx context.Context, params map[string]any) (string, error) {
	ticketID, err := paramInt(params, "ticket_id")
	if err != nil {
		return "", err
	}

	if _, err := e.data.GetTicket(ctx, ticketID); err != nil {
		if commercedb.IsNotFound(err) {
			return fmt.Sprintf("❌ Ticket ID %d not found.", ticketID), nil
		}
		return "", err
	}
	if err := e.data.ResolveTicket(ctx, ticketID); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Resolved ticket ID %d", ticketID), nil
}

/* ---------------------------- param extraction ---------------------------- */

// paramInt reads a required integer param, tolerating JSON's float64 numbers.
func paramInt(params map[string]any, key string) (int64, error) {
	switch v := params[key].(type) {
	case float64:
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("missing or invalid param %q", key)
	}
}

func paramIntDefault(params map[string]any, key string, def int64) int64 {
	if v, err := paramInt(params, key); err == nil && v > 0 {
		return v
	}
	return def
}

func paramFloatDefault(params map[string]any, key string, def float64) float64 {
	switch v := params[key].(type) {
	case float64:
		if v > 0 {
			return v
		}
	case int:
		if v > 0 {
			return float64(v)
		}
	}
	return def
}

func paramStrDefault(params map[string]any, key, def string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return def
}
