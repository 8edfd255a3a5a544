package specialist

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/napatw/storeops/agent/contract"
	toolx "github.com/napatw/storeops/agent/tool"
	"github.com/napatw/storeops/pkg/commercedb"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int

	transcripts [][]*schema.Message
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.transcripts = append(f.transcripts, input)
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

type stubData struct {
	contractx.DataStore
	inventory []commercedb.InventoryItem
}

func (s *stubData) GetOutOfStock(ctx context.Context) ([]commercedb.InventoryItem, error) {
	return s.inventory, nil
}

func toolCallMsg(id, name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{
				ID:       id,
				Type:     "function",
				Function: schema.FunctionCall{Name: name, Arguments: args},
			},
		},
	}
}

func TestSpecialistDirectAnswer(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Role: schema.Assistant, Content: "  Inventory looks healthy.  "},
		},
	}
	spec, err := newSpecialist(context.Background(), contractx.AgentInventory, fake, "inventory prompt", toolx.Deps{Data: &stubData{}}, 0)
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	out, err := spec.Run(context.Background(), "how is stock?")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "Inventory looks healthy." {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSpecialistToolLoopFeedsResultsBack(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMsg("call_1", "get_out_of_stock_products", `{}`),
			{Role: schema.Assistant, Content: "One product is out of stock."},
		},
	}
	data := &stubData{inventory: []commercedb.InventoryItem{{ID: 7, Name: "Widget"}}}
	spec, err := newSpecialist(context.Background(), contractx.AgentInventory, fake, "inventory prompt", toolx.Deps{Data: data}, 0)
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	out, err := spec.Run(context.Background(), "anything out of stock?")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "One product is out of stock." {
		t.Fatalf("unexpected output: %q", out)
	}

	// The second generate call must carry the tool result.
	if len(fake.transcripts) != 2 {
		t.Fatalf("expected 2 generate calls, got %d", len(fake.transcripts))
	}
	second := fake.transcripts[1]
	last := second[len(second)-1]
	if last.Role != schema.Tool {
		t.Fatalf("expected tool message, got role %s", last.Role)
	}
	if !strings.Contains(last.Content, "Widget (ID: 7)") {
		t.Fatalf("tool result not fed back: %q", last.Content)
	}
}

func TestSpecialistUnknownToolSubstitutesMessage(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMsg("call_1", "not_a_tool", `{}`),
			{Role: schema.Assistant, Content: "done"},
		},
	}
	spec, err := newSpecialist(context.Background(), contractx.AgentInventory, fake, "inventory prompt", toolx.Deps{Data: &stubData{}}, 0)
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	if _, err := spec.Run(context.Background(), "q"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second := fake.transcripts[1]
	last := second[len(second)-1]
	if last.Content != "Unknown tool: not_a_tool" {
		t.Fatalf("unexpected substitution: %q", last.Content)
	}
}

func TestSpecialistIterationCapFallsBackToLastContent(t *testing.T) {
	t.Parallel()

	var responses []*schema.Message
	for i := 0; i < 3; i++ {
		msg := toolCallMsg("call", "get_out_of_stock_products", `{}`)
		msg.Content = "still gathering data"
		responses = append(responses, msg)
	}
	fake := &fakeToolCallingModel{responses: responses}
	spec, err := newSpecialist(context.Background(), contractx.AgentInventory, fake, "inventory prompt", toolx.Deps{Data: &stubData{}}, 3)
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	out, err := spec.Run(context.Background(), "q")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "still gathering data" {
		t.Fatalf("unexpected fallback output: %q", out)
	}
	if len(fake.transcripts) != 3 {
		t.Fatalf("expected exactly 3 generate calls, got %d", len(fake.transcripts))
	}
}

func TestSpecialistModelErrorWrapped(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{err: errors.New("rate limited")}
	spec, err := newSpecialist(context.Background(), contractx.AgentSales, fake, "sales prompt", toolx.Deps{Data: &stubData{}}, 0)
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	_, err = spec.Run(context.Background(), "q")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}
