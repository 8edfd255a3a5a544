package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/schema"
)

func salesToolInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: "get_sales_summary",
			Desc: "Get daily sales summary (revenue and order count) for a date range.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"start_date": {Type: schema.String, Desc: "Start date YYYY-MM-DD, defaults to 7 days ago"},
				"end_date":   {Type: schema.String, Desc: "End date YYYY-MM-DD, defaults to today"},
			}),
		},
		{
			Name: "get_top_products",
			Desc: "Get top selling products by revenue for a date range.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"start_date": {Type: schema.String, Desc: "Start date YYYY-MM-DD, defaults to 7 days ago"},
				"end_date":   {Type: schema.String, Desc: "End date YYYY-MM-DD, defaults to today"},
				"limit":      {Type: schema.Integer, Desc: "Number of products to return, defaults to 5"},
			}),
		},
		{
			Name: "get_sales_by_region",
			Desc: "Get sales breakdown by region for a date range.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"start_date": {Type: schema.String, Desc: "Start date YYYY-MM-DD, defaults to 7 days ago"},
				"end_date":   {Type: schema.String, Desc: "End date YYYY-MM-DD, defaults to today"},
			}),
		},
		{
			Name: "compare_sales_periods",
			Desc: "Compare revenue and order volume between two time periods.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"period1_start": {Type: schema.String, Desc: "First period start YYYY-MM-DD", Required: true},
				"period1_end":   {Type: schema.String, Desc: "First period end YYYY-MM-DD", Required: true},
				"period2_start": {Type: schema.String, Desc: "Second period start YYYY-MM-DD", Required: true},
				"period2_end":   {Type: schema.String, Desc: "Second period end YYYY-MM-DD", Required: true},
			}),
		},
		{
			Name: "get_sales_for_product",
			Desc: "Get sales totals for one product over a date range.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": {Type: schema.Integer, Desc: "Product id to look up", Required: true},
				"start_date": {Type: schema.String, Desc: "Start date YYYY-MM-DD, defaults to 30 days ago"},
				"end_date":   {Type: schema.String, Desc: "End date YYYY-MM-DD, defaults to today"},
			}),
		},
	}
}

func salesExecutor(deps Deps) Executor {
	return func(ctx context.Context, name string, args map[string]any) (string, error) {
		switch name {
		case "get_sales_summary":
			return salesSummary(ctx, deps, args)
		case "get_top_products":
			return topProducts(ctx, deps, args)
		case "get_sales_by_region":
			return salesByRegion(ctx, deps, args)
		case "compare_sales_periods":
			return compareSales(ctx, deps, args)
		case "get_sales_for_product":
			return productSales(ctx, deps, args)
		default:
			return "", fmt.Errorf("unknown tool %q", name)
		}
	}
}

func salesSummary(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	now := deps.now()
	start := dateArg(args, "start_date", 7, now)
	end := dateArg(args, "end_date", 0, now)

	sales, err := deps.Data.GetSales(ctx, start, end)
	if err != nil {
		return "", err
	}
	if len(sales) == 0 {
		return fmt.Sprintf("No sales data found between %s and %s", start, end), nil
	}

	var revenue float64
	var orders int64
	for _, s := range sales {
		revenue += s.Revenue
		orders += s.Orders
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].SaleDate > sales[j].SaleDate })

	var b strings.Builder
	fmt.Fprintf(&b, "Sales Summary (%s to %s):\n", start, end)
	fmt.Fprintf(&b, "Total Revenue: %s\n", money(revenue))
	fmt.Fprintf(&b, "Total Orders: %d\n\n", orders)
	b.WriteString("Daily Breakdown:\n")
	for _, s := range sales {
		fmt.Fprintf(&b, "  %s: %s (%d orders)\n", s.SaleDate, money(s.Revenue), s.Orders)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func topProducts(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	now := deps.now()
	start := dateArg(args, "start_date", 7, now)
	end := dateArg(args, "end_date", 0, now)
	limit := intArgDefault(args, "limit", 5)

	products, err := deps.Data.GetTopProducts(ctx, start, end, int(limit))
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return fmt.Sprintf("No product sales data found between %s and %s", start, end), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Top %d Products (%s to %s):\n\n", limit, start, end)
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s (ID: %d)\n", i+1, p.Name, p.ID)
		fmt.Fprintf(&b, "   Revenue: %s | Units Sold: %d\n", money(p.Revenue), p.Units)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func salesByRegion(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	now := deps.now()
	start := dateArg(args, "start_date", 7, now)
	end := dateArg(args, "end_date", 0, now)

	regions, err := deps.Data.GetSalesByRegion(ctx, start, end)
	if err != nil {
		return "", err
	}
	if len(regions) == 0 {
		return fmt.Sprintf("No regional sales data found between %s and %s", start, end), nil
	}

	var total float64
	for _, r := range regions {
		total += r.Revenue
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Revenue > regions[j].Revenue })

	var b strings.Builder
	fmt.Fprintf(&b, "Sales by Region (%s to %s):\n", start, end)
	fmt.Fprintf(&b, "Total: %s\n\n", money(total))
	for _, r := range regions {
		pct := 0.0
		if total > 0 {
			pct = r.Revenue / total * 100
		}
		fmt.Fprintf(&b, "  %s: %s (%.1f%%) - %d orders\n", r.Region, money(r.Revenue), pct, r.Orders)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func compareSales(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	now := deps.now()
	p1Start := dateArg(args, "period1_start", 0, now)
	p1End := dateArg(args, "period1_end", 0, now)
	p2Start := dateArg(args, "period2_start", 0, now)
	p2End := dateArg(args, "period2_end", 0, now)

	sales1, err := deps.Data.GetSales(ctx, p1Start, p1End)
	if err != nil {
		return "", err
	}
	sales2, err := deps.Data.GetSales(ctx, p2Start, p2End)
	if err != nil {
		return "", err
	}

	var rev1, rev2 float64
	var ord1, ord2 int64
	for _, s := range sales1 {
		rev1 += s.Revenue
		ord1 += s.Orders
	}
	for _, s := range sales2 {
		rev2 += s.Revenue
		ord2 += s.Orders
	}
	var revChange, ordChange float64
	if rev2 > 0 {
		revChange = (rev1 - rev2) / rev2 * 100
	}
	if ord2 > 0 {
		ordChange = float64(ord1-ord2) / float64(ord2) * 100
	}

	var b strings.Builder
	b.WriteString("Sales Comparison:\n\n")
	fmt.Fprintf(&b, "Period 1 (%s to %s):\n  Revenue: %s\n  Orders: %d\n\n", p1Start, p1End, money(rev1), ord1)
	fmt.Fprintf(&b, "Period 2 (%s to %s):\n  Revenue: %s\n  Orders: %d\n\n", p2Start, p2End, money(rev2), ord2)
	b.WriteString("Change (Period 1 vs Period 2):\n")
	fmt.Fprintf(&b, "  Revenue: %+.1f%%\n", revChange)
	fmt.Fprintf(&b, "  Orders: %+.1f%%", ordChange)
	return b.String(), nil
}

func productSales(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	productID, ok := intArg(args, "product_id")
	if !ok {
		return "Missing required argument: product_id", nil
	}
	now := deps.now()
	start := dateArg(args, "start_date", 30, now)
	end := dateArg(args, "end_date", 0, now)

	sales, err := deps.Data.GetProductSales(ctx, productID, start, end)
	if err != nil {
		return "", err
	}
	if len(sales) == 0 {
		return fmt.Sprintf("No sales found for product %d between %s and %s", productID, start, end), nil
	}

	var revenue float64
	var units int64
	for _, s := range sales {
		revenue += s.Amount
		units += s.Quantity
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sales for Product ID %d (%s to %s):\n", productID, start, end)
	fmt.Fprintf(&b, "Total Revenue: %s\n", money(revenue))
	fmt.Fprintf(&b, "Total Units: %d\n", units)
	fmt.Fprintf(&b, "Number of Transactions: %d", len(sales))
	return b.String(), nil
}
