package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/napatw/storeops/pkg/commercedb"
)

func inventoryToolInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: "get_inventory_status",
			Desc: "Get current inventory status for all products including stock levels and reorder points.",
		},
		{
			Name: "get_out_of_stock_products",
			Desc: "Get products that are currently out of stock (zero inventory).",
		},
		{
			Name: "get_low_stock_products",
			Desc: "Get products with stock at or below reorder level but not zero.",
		},
		{
			Name: "get_product_inventory",
			Desc: "Get inventory details for a specific product.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": {Type: schema.Integer, Desc: "Product id to look up", Required: true},
			}),
		},
		{
			Name: "check_stock_for_products",
			Desc: "Check stock status for multiple products at once.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_ids": {
					Type:     schema.Array,
					Desc:     "Product ids to check",
					ElemInfo: &schema.ParameterInfo{Type: schema.Integer},
					Required: true,
				},
			}),
		},
	}
}

func inventoryExecutor(deps Deps) Executor {
	return func(ctx context.Context, name string, args map[string]any) (string, error) {
		switch name {
		case "get_inventory_status":
			return inventoryStatus(ctx, deps)
		case "get_out_of_stock_products":
			return outOfStock(ctx, deps)
		case "get_low_stock_products":
			return lowStock(ctx, deps)
		case "get_product_inventory":
			return productInventory(ctx, deps, args)
		case "check_stock_for_products":
			return checkStock(ctx, deps, args)
		default:
			return "", fmt.Errorf("unknown tool %q", name)
		}
	}
}

func stockStatus(item commercedb.InventoryItem) string {
	switch {
	case item.Stock == 0:
		return "OUT OF STOCK"
	case item.Stock <= item.ReorderLevel:
		return "LOW"
	default:
		return "OK"
	}
}

func inventoryStatus(ctx context.Context, deps Deps) (string, error) {
	inventory, err := deps.Data.GetInventory(ctx)
	if err != nil {
		return "", err
	}
	if len(inventory) == 0 {
		return "No inventory data available", nil
	}

	var critical, low, ok []string
	for _, item := range inventory {
		entry := fmt.Sprintf("%s (ID: %d): %d units (reorder at %d)", item.Name, item.ID, item.Stock, item.ReorderLevel)
		switch {
		case item.Stock == 0:
			critical = append(critical, entry)
		case item.Stock <= item.ReorderLevel:
			low = append(low, entry)
		default:
			ok = append(ok, entry)
		}
	}

	var b strings.Builder
	b.WriteString("Inventory Status:\n\n")
	fmt.Fprintf(&b, "CRITICAL - Out of Stock (%d):\n", len(critical))
	writeSection(&b, critical, "❌")
	fmt.Fprintf(&b, "\nLOW - Below Reorder Level (%d):\n", len(low))
	writeSection(&b, low, "⚠️")
	fmt.Fprintf(&b, "\nOK - Adequate Stock (%d):\n", len(ok))
	writeSection(&b, ok, "✓")
	return strings.TrimRight(b.String(), "\n"), nil
}

func writeSection(b *strings.Builder, entries []string, icon string) {
	if len(entries) == 0 {
		b.WriteString("  None\n")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(b, "  %s %s\n", icon, e)
	}
}

func outOfStock(ctx context.Context, deps Deps) (string, error) {
	products, err := deps.Data.GetOutOfStock(ctx)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "No products are currently out of stock.", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Out of Stock Products (%d):\n", len(products))
	for _, p := range products {
		fmt.Fprintf(&b, "  ❌ %s (ID: %d)\n", p.Name, p.ID)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func lowStock(ctx context.Context, deps Deps) (string, error) {
	products, err := deps.Data.GetLowStock(ctx)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "No products are currently low on stock.", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Low Stock Products (%d):\n", len(products))
	for _, p := range products {
		fmt.Fprintf(&b, "  ⚠️ %s (ID: %d): %d units remaining\n", p.Name, p.ID, p.Stock)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func productInventory(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	productID, ok := intArg(args, "product_id")
	if !ok {
		return "Missing required argument: product_id", nil
	}
	item, err := deps.Data.GetProductInventory(ctx, productID)
	if err != nil {
		if commercedb.IsNotFound(err) {
			return fmt.Sprintf("Product ID %d not found in inventory.", productID), nil
		}
		return "", err
	}
	return fmt.Sprintf("Product: %s (ID: %d)\nCurrent Stock: %d units\nReorder Level: %d units\nStatus: %s",
		item.Name, productID, item.Stock, item.ReorderLevel, stockStatus(*item)), nil
}

func checkStock(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	ids, ok := intSliceArg(args, "product_ids")
	if !ok || len(ids) == 0 {
		return "Missing required argument: product_ids", nil
	}
	inventory, err := deps.Data.GetInventory(ctx)
	if err != nil {
		return "", err
	}
	byID := make(map[int64]commercedb.InventoryItem, len(inventory))
	for _, item := range inventory {
		byID[item.ID] = item
	}

	var b strings.Builder
	b.WriteString("Stock Check Results:\n\n")
	for _, id := range ids {
		item, found := byID[id]
		if !found {
			fmt.Fprintf(&b, "  ❓ Product ID %d: Not found\n", id)
			continue
		}
		var icon string
		switch {
		case item.Stock == 0:
			icon = "❌ OUT"
		case item.Stock <= item.ReorderLevel:
			icon = "⚠️ LOW"
		default:
			icon = "✓ OK"
		}
		fmt.Fprintf(&b, "  %s %s (ID: %d): %d units\n", icon, item.Name, id, item.Stock)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
