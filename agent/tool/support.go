package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/napatw/storeops/pkg/commercedb"
)

func supportToolInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: "get_open_tickets",
			Desc: "Get all currently open support tickets grouped by priority.",
		},
		{
			Name: "get_ticket_summary",
			Desc: "Get a summary of open tickets grouped by category and priority.",
		},
		{
			Name: "get_ticket_details",
			Desc: "Get full details of a specific support ticket.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticket_id": {Type: schema.Integer, Desc: "Ticket id to look up", Required: true},
			}),
		},
		{
			Name: "get_tickets_by_category",
			Desc: "Get all open tickets for one category.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"category": {Type: schema.String, Desc: "Category: shipping, order, refund, technical, billing or product", Required: true},
			}),
		},
		{
			Name: "get_ticket_trends",
			Desc: "Get ticket creation counts per day over a date range.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"start_date": {Type: schema.String, Desc: "Start date YYYY-MM-DD, defaults to 7 days ago"},
				"end_date":   {Type: schema.String, Desc: "End date YYYY-MM-DD, defaults to today"},
			}),
		},
	}
}

func supportExecutor(deps Deps) Executor {
	return func(ctx context.Context, name string, args map[string]any) (string, error) {
		switch name {
		case "get_open_tickets":
			return openTickets(ctx, deps)
		case "get_ticket_summary":
			return ticketSummary(ctx, deps)
		case "get_ticket_details":
			return ticketDetails(ctx, deps, args)
		case "get_tickets_by_category":
			return ticketsByCategory(ctx, deps, args)
		case "get_ticket_trends":
			return ticketTrends(ctx, deps, args)
		default:
			return "", fmt.Errorf("unknown tool %q", name)
		}
	}
}

func priorityIcon(priority string) string {
	switch priority {
	case "high":
		return "🔴"
	case "medium":
		return "🟡"
	default:
		return "🟢"
	}
}

func openTickets(ctx context.Context, deps Deps) (string, error) {
	tickets, err := deps.Data.GetOpenTickets(ctx)
	if err != nil {
		return "", err
	}
	if len(tickets) == 0 {
		return "No open support tickets.", nil
	}

	byPriority := map[string][]commercedb.Ticket{}
	for _, t := range tickets {
		byPriority[t.Priority] = append(byPriority[t.Priority], t)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Open Support Tickets (%d total):\n\n", len(tickets))
	for i, priority := range []string{"high", "medium", "low"} {
		if i > 0 {
			b.WriteString("\n")
		}
		group := byPriority[priority]
		fmt.Fprintf(&b, "%s Priority (%d):\n", strings.ToUpper(priority), len(group))
		if len(group) == 0 {
			b.WriteString("  None\n")
			continue
		}
		for _, t := range group {
			fmt.Fprintf(&b, "  %s [%d] %s (%s)\n", priorityIcon(priority), t.ID, t.Subject, t.Category)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func ticketSummary(ctx context.Context, deps Deps) (string, error) {
	groups, err := deps.Data.GetTicketSummary(ctx)
	if err != nil {
		return "", err
	}
	if len(groups) == 0 {
		return "No ticket summary available.", nil
	}

	type catCounts struct {
		category          string
		high, medium, low int64
		total             int64
	}
	byCat := map[string]*catCounts{}
	var order []string
	for _, g := range groups {
		c, ok := byCat[g.Category]
		if !ok {
			c = &catCounts{category: g.Category}
			byCat[g.Category] = c
			order = append(order, g.Category)
		}
		switch g.Priority {
		case "high":
			c.high = g.Count
		case "medium":
			c.medium = g.Count
		case "low":
			c.low = g.Count
		}
		c.total += g.Count
	}
	sort.SliceStable(order, func(i, j int) bool { return byCat[order[i]].total > byCat[order[j]].total })

	var b strings.Builder
	b.WriteString("Ticket Summary by Category:\n\n")
	for _, cat := range order {
		c := byCat[cat]
		fmt.Fprintf(&b, "%s: %d tickets\n", strings.ToUpper(cat), c.total)
		fmt.Fprintf(&b, "  High: %d | Medium: %d | Low: %d\n", c.high, c.medium, c.low)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func ticketDetails(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	ticketID, ok := intArg(args, "ticket_id")
	if !ok {
		return "Missing required argument: ticket_id", nil
	}
	t, err := deps.Data.GetTicket(ctx, ticketID)
	if err != nil {
		if commercedb.IsNotFound(err) {
			return fmt.Sprintf("Ticket #%d not found or not open.", ticketID), nil
		}
		return "", err
	}
	return fmt.Sprintf("Ticket #%d\nSubject: %s\nCategory: %s\nPriority: %s\nStatus: %s\nCreated: %s\n\nDescription:\n%s",
		t.ID, t.Subject, t.Category, strings.ToUpper(t.Priority), t.Status, t.CreatedAt, t.Description), nil
}

func ticketsByCategory(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	category, ok := strArg(args, "category")
	if !ok || category == "" {
		return "Missing required argument: category", nil
	}
	tickets, err := deps.Data.GetTicketsByCategory(ctx, strings.ToLower(category))
	if err != nil {
		return "", err
	}
	if len(tickets) == 0 {
		return fmt.Sprintf("No open tickets in category '%s'.", category), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Open Tickets - %s (%d):\n\n", strings.ToUpper(category), len(tickets))
	for _, t := range tickets {
		fmt.Fprintf(&b, "%s [%d] %s\n", priorityIcon(t.Priority), t.ID, t.Subject)
		fmt.Fprintf(&b, "    %s...\n", truncate(t.Description, 100))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func ticketTrends(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	now := deps.now()
	start := dateArg(args, "start_date", 7, now)
	end := dateArg(args, "end_date", 0, now)

	days, err := deps.Data.GetTicketTrends(ctx, start, end)
	if err != nil {
		return "", err
	}
	if len(days) == 0 {
		return fmt.Sprintf("No ticket data available for %s to %s.", start, end), nil
	}

	var total int64
	for _, d := range days {
		total += d.Count
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })

	var b strings.Builder
	fmt.Fprintf(&b, "Ticket Trends (%s to %s):\n\n", start, end)
	fmt.Fprintf(&b, "Total Tickets Created: %d\n\n", total)
	b.WriteString("Daily Breakdown:\n")
	for _, d := range days {
		fmt.Fprintf(&b, "  %s: %d tickets\n", d.Date, d.Count)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
