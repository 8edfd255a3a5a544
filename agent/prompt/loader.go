package prompt

import (
	_ "embed"
	"strings"

	contractx "github.com/napatw/storeops/agent/contract"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/synthesis.txt
	synthesisRaw string

	//go:embed template/action.txt
	actionRaw string

	//go:embed template/sales.txt
	salesRaw string

	//go:embed template/inventory.txt
	inventoryRaw string

	//go:embed template/support.txt
	supportRaw string

	//go:embed template/marketing.txt
	marketingRaw string

	//go:embed template/memory.txt
	memoryRaw string
)

// Set holds loaded prompt content.
type Set struct {
	Router    string
	Synthesis string
	Action    string

	Sales     string
	Inventory string
	Support   string
	Marketing string
	Memory    string
}

// LoadSet returns a Set with trimmed prompt strings. Safe to call
// concurrently; the embed is compile-time.
func LoadSet() Set {
	return Set{
		Router:    strings.TrimSpace(routerRaw),
		Synthesis: strings.TrimSpace(synthesisRaw),
		Action:    strings.TrimSpace(actionRaw),
		Sales:     strings.TrimSpace(salesRaw),
		Inventory: strings.TrimSpace(inventoryRaw),
		Support:   strings.TrimSpace(supportRaw),
		Marketing: strings.TrimSpace(marketingRaw),
		Memory:    strings.TrimSpace(memoryRaw),
	}
}

// ForAgent maps a specialist to its domain prompt.
func (s Set) ForAgent(name contractx.AgentName) string {
	switch name {
	case contractx.AgentSales:
		return s.Sales
	case contractx.AgentInventory:
		return s.Inventory
	case contractx.AgentSupport:
		return s.Support
	case contractx.AgentMarketing:
		return s.Marketing
	case contractx.AgentMemory:
		return s.Memory
	default:
		return ""
	}
}
