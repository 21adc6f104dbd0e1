// Package agentrt is the named-at-interface-only stand-in for AIScript's
// LLM collaborator (spec's Non-goals: "no LLM execution ... stub in
// internal/agentrt"). It defines the Runner boundary a real model client
// would sit behind and wires it to bytecode.VM.Prompt, plus a
// deterministic test double so scripts using `prompt`/`ai fn` can be
// exercised without a network call.
package agentrt

import (
	"fmt"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
)

// AgentContext is the subset of an agent's declared configuration
// (spec §3: "Agent: {name, instructions, model, tool_choice, tools}")
// a Runner needs to answer a prompt. Agents are compiled as ordinary
// fields (see internal/bytecode's AgentObject), so these are read back
// out of the live instance's field map rather than carried as separate
// compiler-level metadata.
type AgentContext struct {
	Name         string
	Instructions string
	Model        string
}

// Runner issues one prompt/response round trip on behalf of a script's
// `prompt` expression. Implementations may block (spec §5: prompt is a
// synchronous suspension point from the script's point of view, bridged
// onto the host's async runtime).
type Runner interface {
	Prompt(ctx AgentContext, text string) (string, error)
}

// Bridge installs r as vm's agent prompter, implementing
// bytecode.AgentPrompter by projecting the live *bytecode.AgentObject
// (or the zero AgentContext, for a `prompt` in an `ai fn` that is not an
// agent method) into the narrower AgentContext Runner actually needs.
func Bridge(vm *bytecode.VM, r Runner) {
	vm.Prompt = func(agent *bytecode.AgentObject, prompt bytecode.Value) (bytecode.Value, error) {
		text := prompt.String()
		resp, err := r.Prompt(contextFromAgent(agent), text)
		if err != nil {
			return bytecode.ErrorValue(&bytecode.ErrorObject{Kind: "PromptError", Message: err.Error()}), nil
		}
		return bytecode.StringValue(resp), nil
	}
}

func contextFromAgent(agent *bytecode.AgentObject) AgentContext {
	if agent == nil {
		return AgentContext{}
	}
	ctx := AgentContext{Name: agent.Name}
	if agent.Fields != nil {
		if v, ok := agent.Fields.Get("instructions"); ok {
			ctx.Instructions = v.String()
		}
		if v, ok := agent.Fields.Get("model"); ok {
			ctx.Model = v.String()
		}
	}
	return ctx
}

// EchoRunner is a deterministic Runner for tests and embedding demos: it
// never calls out to a model, instead echoing the prompt back prefixed
// by the agent's name (or "script" at top level), so a scripted
// assertion on `prompt`'s return value doesn't depend on live LLM
// output.
type EchoRunner struct{}

func (EchoRunner) Prompt(ctx AgentContext, text string) (string, error) {
	name := ctx.Name
	if name == "" {
		name = "script"
	}
	return fmt.Sprintf("[%s] %s", name, text), nil
}

// ScriptedRunner replays a fixed queue of responses, one per call, for
// tests that need to assert on a specific multi-turn exchange. Calling
// Prompt past the end of Responses is an error rather than a panic, so a
// test with a wrong call count fails with a clear message.
type ScriptedRunner struct {
	Responses []string
	calls     int
}

func (s *ScriptedRunner) Prompt(ctx AgentContext, text string) (string, error) {
	if s.calls >= len(s.Responses) {
		return "", fmt.Errorf("agentrt: no scripted response left for call %d (prompt: %q)", s.calls+1, text)
	}
	resp := s.Responses[s.calls]
	s.calls++
	return resp, nil
}

// Calls reports how many prompts have been issued so far.
func (s *ScriptedRunner) Calls() int { return s.calls }
