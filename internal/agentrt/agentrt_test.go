package agentrt

import (
	"testing"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
)

func TestBridge_EchoRunner(t *testing.T) {
	vm := bytecode.NewVM()
	Bridge(vm, EchoRunner{})

	fields := bytecode.NewMap()
	fields.Set("instructions", bytecode.StringValue("be terse"))
	agent := &bytecode.AgentObject{Name: "Helper", Fields: fields}

	resp, err := vm.Prompt(agent, bytecode.StringValue("hello"))
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if resp.AsString() != "[Helper] hello" {
		t.Errorf("resp = %q, want %q", resp.AsString(), "[Helper] hello")
	}
}

func TestBridge_NilAgentUsesScriptLabel(t *testing.T) {
	vm := bytecode.NewVM()
	Bridge(vm, EchoRunner{})

	resp, err := vm.Prompt(nil, bytecode.StringValue("top level"))
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if resp.AsString() != "[script] top level" {
		t.Errorf("resp = %q, want %q", resp.AsString(), "[script] top level")
	}
}

func TestScriptedRunner(t *testing.T) {
	r := &ScriptedRunner{Responses: []string{"first", "second"}}
	vm := bytecode.NewVM()
	Bridge(vm, r)

	resp1, err := vm.Prompt(nil, bytecode.StringValue("a"))
	if err != nil || resp1.AsString() != "first" {
		t.Errorf("resp1 = %v, err = %v", resp1, err)
	}
	resp2, err := vm.Prompt(nil, bytecode.StringValue("b"))
	if err != nil || resp2.AsString() != "second" {
		t.Errorf("resp2 = %v, err = %v", resp2, err)
	}
	if r.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", r.Calls())
	}

	resp3, err := vm.Prompt(nil, bytecode.StringValue("c"))
	if err != nil {
		t.Fatalf("Prompt should report exhaustion as a PromptError value, not a Go error: %v", err)
	}
	if !resp3.IsError() || resp3.AsError().Kind != "PromptError" {
		t.Errorf("resp3 = %v, want a PromptError value for the exhausted queue", resp3)
	}
}

func TestContextFromAgent_NoFields(t *testing.T) {
	ctx := contextFromAgent(&bytecode.AgentObject{Name: "Bare"})
	if ctx.Name != "Bare" || ctx.Instructions != "" || ctx.Model != "" {
		t.Errorf("ctx = %+v, want only Name set", ctx)
	}
}
