package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/napatw/storeops/pkg/vectorstore"
)

func memoryToolInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: "search_similar_incidents",
			Desc: "Search for historically similar incidents using semantic search.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {Type: schema.String, Desc: "Description of the current situation", Required: true},
				"limit": {Type: schema.Integer, Desc: "Maximum results, defaults to 5"},
			}),
		},
		{
			Name: "search_incidents_by_type",
			Desc: "Search past incidents of one type.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"incident_type": {Type: schema.String, Desc: "Type: sales_drop, stockout, campaign_failure, support_spike or pricing_error", Required: true},
				"query":         {Type: schema.String, Desc: "Optional query; defaults to the type itself"},
				"limit":         {Type: schema.Integer, Desc: "Maximum results, defaults to 5"},
			}),
		},
		{
			Name: "get_recent_incidents",
			Desc: "Get recent incidents from the operational record.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"days":          {Type: schema.Integer, Desc: "Days to look back, defaults to 30"},
				"incident_type": {Type: schema.String, Desc: "Optional type filter"},
			}),
		},
		{
			Name: "search_resolved_tickets",
			Desc: "Search resolved tickets for similar issues and their resolutions.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {Type: schema.String, Desc: "Description of the issue", Required: true},
				"limit": {Type: schema.Integer, Desc: "Maximum results, defaults to 5"},
			}),
		},
		{
			Name: "get_incident_patterns",
			Desc: "Analyze frequency and root-cause patterns in historical incidents.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"incident_type": {Type: schema.String, Desc: "Optional type filter"},
			}),
		},
	}
}

func memoryExecutor(deps Deps) Executor {
	return func(ctx context.Context, name string, args map[string]any) (string, error) {
		switch name {
		case "search_similar_incidents":
			return similarIncidents(ctx, deps, args)
		case "search_incidents_by_type":
			return incidentsByType(ctx, deps, args)
		case "get_recent_incidents":
			return recentIncidents(ctx, deps, args)
		case "search_resolved_tickets":
			return resolvedTickets(ctx, deps, args)
		case "get_incident_patterns":
			return incidentPatterns(ctx, deps, args)
		default:
			return "", fmt.Errorf("unknown tool %q", name)
		}
	}
}

func similarIncidents(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	query, ok := strArg(args, "query")
	if !ok || query == "" {
		return "Missing required argument: query", nil
	}
	limit := intArgDefault(args, "limit", 5)

	hits, err := deps.Search.Search(ctx, vectorstore.CollectionIncidents, query, int(limit), nil)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "No similar incidents found in history.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Similar Historical Incidents (%d found):\n\n", len(hits))
	for i, hit := range hits {
		fmt.Fprintf(&b, "%d. [%s] (Relevance: %.0f%%)\n", i+1, strings.ToUpper(payloadStr(hit.Payload, "incident_type")), hit.Score*100)
		fmt.Fprintf(&b, "   What happened: %s\n", payloadStr(hit.Payload, "description"))
		fmt.Fprintf(&b, "   Root cause: %s\n", payloadStr(hit.Payload, "root_cause"))
		fmt.Fprintf(&b, "   Action taken: %s\n", payloadStr(hit.Payload, "action_taken"))
		fmt.Fprintf(&b, "   Outcome: %s\n\n", payloadStr(hit.Payload, "outcome"))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func incidentsByType(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	incidentType, ok := strArg(args, "incident_type")
	if !ok || incidentType == "" {
		return "Missing required argument: incident_type", nil
	}
	query, _ := strArg(args, "query")
	if query == "" {
		query = incidentType + " incident"
	}
	limit := intArgDefault(args, "limit", 5)

	hits, err := deps.Search.Search(ctx, vectorstore.CollectionIncidents, query, int(limit),
		map[string]string{"incident_type": incidentType})
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return fmt.Sprintf("No incidents of type '%s' found.", incidentType), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Past %s Incidents (%d found):\n\n", strings.ToUpper(incidentType), len(hits))
	for i, hit := range hits {
		fmt.Fprintf(&b, "%d. %s\n", i+1, payloadStr(hit.Payload, "description"))
		fmt.Fprintf(&b, "   Cause: %s\n", payloadStr(hit.Payload, "root_cause"))
		fmt.Fprintf(&b, "   Action: %s\n", payloadStr(hit.Payload, "action_taken"))
		fmt.Fprintf(&b, "   Result: %s\n\n", payloadStr(hit.Payload, "outcome"))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func recentIncidents(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	days := intArgDefault(args, "days", 30)
	incidentType, _ := strArg(args, "incident_type")

	incidents, err := deps.Data.GetIncidents(ctx, incidentType)
	if err != nil {
		return "", err
	}
	if len(incidents) == 0 {
		if incidentType != "" {
			return fmt.Sprintf("No incidents of type '%s' found.", incidentType), nil
		}
		return "No incidents found.", nil
	}

	cutoff := deps.now().AddDate(0, 0, -int(days))
	recent := incidents[:0:0]
	for _, inc := range incidents {
		occurred, err := time.Parse(time.RFC3339, inc.OccurredAt)
		if err != nil {
			// Keep unparseable timestamps rather than hiding the record.
			recent = append(recent, inc)
			continue
		}
		if !occurred.Before(cutoff) {
			recent = append(recent, inc)
		}
	}
	if len(recent) == 0 {
		return fmt.Sprintf("No incidents in the last %d days.", days), nil
	}
	if len(recent) > 10 {
		recent = recent[:10]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent Incidents (Last %d Days):\n\n", days)
	for _, inc := range recent {
		fmt.Fprintf(&b, "• [%s] %s\n", strings.ToUpper(inc.Type), inc.Description)
		fmt.Fprintf(&b, "  Date: %s\n", inc.OccurredAt)
		fmt.Fprintf(&b, "  Cause: %s\n", inc.RootCause)
		fmt.Fprintf(&b, "  Action: %s\n\n", inc.ActionTaken)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func resolvedTickets(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	query, ok := strArg(args, "query")
	if !ok || query == "" {
		return "Missing required argument: query", nil
	}
	limit := intArgDefault(args, "limit", 5)

	hits, err := deps.Search.Search(ctx, vectorstore.CollectionTickets, query, int(limit), nil)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "No similar resolved tickets found.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Similar Resolved Tickets (%d found):\n\n", len(hits))
	for i, hit := range hits {
		fmt.Fprintf(&b, "%d. [%s] %s (Relevance: %.0f%%)\n", i+1,
			strings.ToUpper(payloadStr(hit.Payload, "category")), payloadStr(hit.Payload, "subject"), hit.Score*100)
		fmt.Fprintf(&b, "   Issue: %s\n", payloadStr(hit.Payload, "description"))
		fmt.Fprintf(&b, "   Resolution: %s\n\n", payloadStr(hit.Payload, "resolution"))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func incidentPatterns(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	incidentType, _ := strArg(args, "incident_type")

	incidents, err := deps.Data.GetIncidents(ctx, incidentType)
	if err != nil {
		return "", err
	}
	if len(incidents) == 0 {
		return "No incidents available for pattern analysis.", nil
	}

	typeCounts := map[string]int{}
	causeCounts := map[string]int{}
	var typeOrder, causeOrder []string
	for _, inc := range incidents {
		if _, seen := typeCounts[inc.Type]; !seen {
			typeOrder = append(typeOrder, inc.Type)
		}
		typeCounts[inc.Type]++
		cause := truncate(inc.RootCause, 50)
		if _, seen := causeCounts[cause]; !seen {
			causeOrder = append(causeOrder, cause)
		}
		causeCounts[cause]++
	}
	sort.SliceStable(typeOrder, func(i, j int) bool { return typeCounts[typeOrder[i]] > typeCounts[typeOrder[j]] })
	sort.SliceStable(causeOrder, func(i, j int) bool { return causeCounts[causeOrder[i]] > causeCounts[causeOrder[j]] })
	if len(causeOrder) > 5 {
		causeOrder = causeOrder[:5]
	}

	var b strings.Builder
	b.WriteString("Incident Pattern Analysis:\n\n")
	b.WriteString("Frequency by Type:\n")
	for _, t := range typeOrder {
		fmt.Fprintf(&b, "  %s: %d occurrences\n", t, typeCounts[t])
	}
	b.WriteString("\nCommon Root Causes:\n")
	for _, cause := range causeOrder {
		fmt.Fprintf(&b, "  • %s... (%dx)\n", cause, causeCounts[cause])
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
