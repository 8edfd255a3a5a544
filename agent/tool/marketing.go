package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/napatw/storeops/pkg/commercedb"
)

// avgOrderValue is the assumed order value used for campaign ROI estimates.
const avgOrderValue = 75.0

func marketingToolInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: "get_active_campaigns",
			Desc: "Get all currently active marketing campaigns with performance metrics.",
		},
		{
			Name: "get_campaign_details",
			Desc: "Get detailed budget and performance numbers for one campaign.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"campaign_id": {Type: schema.Integer, Desc: "Campaign id to look up", Required: true},
			}),
		},
		{
			Name: "get_campaigns_by_channel",
			Desc: "Get all active campaigns for one channel.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"channel": {Type: schema.String, Desc: "Channel: email, social, search or display", Required: true},
			}),
		},
		{
			Name: "get_underperforming_campaigns",
			Desc: "Get campaigns performing below a click-through-rate threshold.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ctr_threshold": {Type: schema.Number, Desc: "Minimum acceptable CTR percent, defaults to 1.0"},
			}),
		},
		{
			Name: "get_campaign_roi_analysis",
			Desc: "Estimate return on spend across all active campaigns.",
		},
	}
}

func marketingExecutor(deps Deps) Executor {
	return func(ctx context.Context, name string, args map[string]any) (string, error) {
		switch name {
		case "get_active_campaigns":
			return activeCampaigns(ctx, deps)
		case "get_campaign_details":
			return campaignDetails(ctx, deps, args)
		case "get_campaigns_by_channel":
			return campaignsByChannel(ctx, deps, args)
		case "get_underperforming_campaigns":
			return underperformingCampaigns(ctx, deps, args)
		case "get_campaign_roi_analysis":
			return campaignROI(ctx, deps)
		default:
			return "", fmt.Errorf("unknown tool %q", name)
		}
	}
}

func activeCampaigns(ctx context.Context, deps Deps) (string, error) {
	campaigns, err := deps.Data.GetCampaigns(ctx)
	if err != nil {
		return "", err
	}
	if len(campaigns) == 0 {
		return "No active campaigns.", nil
	}

	var totalBudget, totalSpent float64
	var b strings.Builder
	fmt.Fprintf(&b, "Active Marketing Campaigns (%d):\n\n", len(campaigns))
	for _, c := range campaigns {
		totalBudget += c.Budget
		totalSpent += c.Spent

		status := "✓ GOOD"
		if c.CTR < 1 {
			status = "❌ POOR"
		} else if c.CTR < 2 {
			status = "⚠️ WATCH"
		}
		used := 0.0
		if c.Budget > 0 {
			used = c.Spent / c.Budget * 100
		}

		fmt.Fprintf(&b, "%s %s (ID: %d)\n", status, c.Name, c.ID)
		fmt.Fprintf(&b, "  Channel: %s\n", c.Channel)
		fmt.Fprintf(&b, "  Budget: %s / %s (%.0f%% used)\n", moneyWhole(c.Spent), moneyWhole(c.Budget), used)
		fmt.Fprintf(&b, "  Impressions: %s | Clicks: %s | Conversions: %d\n", groupInt(c.Impressions), groupInt(c.Clicks), c.Conversions)
		fmt.Fprintf(&b, "  CTR: %.2f%% | Conversion Rate: %.2f%%\n\n", c.CTR, c.ConvRate)
	}
	fmt.Fprintf(&b, "Total Budget: %s\n", moneyWhole(totalBudget))
	fmt.Fprintf(&b, "Total Spent: %s", moneyWhole(totalSpent))
	return b.String(), nil
}

func campaignDetails(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	campaignID, ok := intArg(args, "campaign_id")
	if !ok {
		return "Missing required argument: campaign_id", nil
	}
	c, err := deps.Data.GetCampaign(ctx, campaignID)
	if err != nil {
		if commercedb.IsNotFound(err) {
			return fmt.Sprintf("Campaign ID %d not found.", campaignID), nil
		}
		return "", err
	}

	var cpc, cpa float64
	if c.Clicks > 0 {
		cpc = c.Spent / float64(c.Clicks)
	}
	if c.Conversions > 0 {
		cpa = c.Spent / float64(c.Conversions)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Campaign: %s (ID: %d)\n", c.Name, campaignID)
	fmt.Fprintf(&b, "Channel: %s\n", c.Channel)
	fmt.Fprintf(&b, "Status: %s\n\n", c.Status)
	b.WriteString("Budget:\n")
	fmt.Fprintf(&b, "  Total: %s\n", moneyWhole(c.Budget))
	fmt.Fprintf(&b, "  Spent: %s\n", moneyWhole(c.Spent))
	fmt.Fprintf(&b, "  Remaining: %s\n\n", moneyWhole(c.Budget-c.Spent))
	b.WriteString("Performance:\n")
	fmt.Fprintf(&b, "  Impressions: %s\n", groupInt(c.Impressions))
	fmt.Fprintf(&b, "  Clicks: %s\n", groupInt(c.Clicks))
	fmt.Fprintf(&b, "  Conversions: %d\n", c.Conversions)
	fmt.Fprintf(&b, "  CTR: %.2f%%\n", c.CTR)
	fmt.Fprintf(&b, "  Conversion Rate: %.2f%%\n", c.ConvRate)
	fmt.Fprintf(&b, "  Cost Per Click: $%.2f\n", cpc)
	fmt.Fprintf(&b, "  Cost Per Acquisition: $%.2f", cpa)
	return b.String(), nil
}

func campaignsByChannel(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	channel, ok := strArg(args, "channel")
	if !ok || channel == "" {
		return "Missing required argument: channel", nil
	}
	campaigns, err := deps.Data.GetCampaigns(ctx)
	if err != nil {
		return "", err
	}
	var filtered []commercedb.Campaign
	for _, c := range campaigns {
		if strings.EqualFold(c.Channel, channel) {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return fmt.Sprintf("No active campaigns on %s channel.", channel), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Campaigns on %s (%d):\n\n", strings.ToUpper(channel), len(filtered))
	for _, c := range filtered {
		fmt.Fprintf(&b, "• %s (ID: %d)\n", c.Name, c.ID)
		fmt.Fprintf(&b, "  Spent: %s | CTR: %.2f%% | Conversions: %d\n", moneyWhole(c.Spent), c.CTR, c.Conversions)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func underperformingCampaigns(ctx context.Context, deps Deps, args map[string]any) (string, error) {
	threshold := 1.0
	if v, ok := floatArg(args, "ctr_threshold"); ok && v > 0 {
		threshold = v
	}
	campaigns, err := deps.Data.GetCampaigns(ctx)
	if err != nil {
		return "", err
	}
	var poor []commercedb.Campaign
	for _, c := range campaigns {
		if c.CTR < threshold {
			poor = append(poor, c)
		}
	}
	if len(poor) == 0 {
		return fmt.Sprintf("No campaigns below %g%% CTR threshold.", threshold), nil
	}
	sort.Slice(poor, func(i, j int) bool { return poor[i].CTR < poor[j].CTR })

	var wasted float64
	var b strings.Builder
	fmt.Fprintf(&b, "Underperforming Campaigns (CTR < %g%%):\n\n", threshold)
	for _, c := range poor {
		wasted += c.Spent
		fmt.Fprintf(&b, "❌ %s (ID: %d)\n", c.Name, c.ID)
		fmt.Fprintf(&b, "   Channel: %s | CTR: %.2f%% | Spent: %s\n", c.Channel, c.CTR, moneyWhole(c.Spent))
	}
	fmt.Fprintf(&b, "\nTotal spent on underperforming: %s", moneyWhole(wasted))
	return b.String(), nil
}

func campaignROI(ctx context.Context, deps Deps) (string, error) {
	campaigns, err := deps.Data.GetCampaigns(ctx)
	if err != nil {
		return "", err
	}
	if len(campaigns) == 0 {
		return "No campaigns to analyze.", nil
	}

	profit := func(c commercedb.Campaign) float64 {
		return float64(c.Conversions)*avgOrderValue - c.Spent
	}
	sort.Slice(campaigns, func(i, j int) bool { return profit(campaigns[i]) > profit(campaigns[j]) })

	var b strings.Builder
	b.WriteString("Campaign ROI Analysis:\n\n")
	for _, c := range campaigns {
		revenue := float64(c.Conversions) * avgOrderValue
		roi := 0.0
		if c.Spent > 0 {
			roi = (revenue - c.Spent) / c.Spent * 100
		}
		status := "❌"
		if roi > 50 {
			status = "✓"
		} else if roi > 0 {
			status = "⚠️"
		}
		fmt.Fprintf(&b, "%s %s (ID: %d)\n", status, c.Name, c.ID)
		fmt.Fprintf(&b, "   Spent: %s | Est. Revenue: %s | ROI: %.0f%%\n", moneyWhole(c.Spent), moneyWhole(revenue), roi)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
