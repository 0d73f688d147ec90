package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ErrMissingArgument marks a tool call without one of its required parameters.
var ErrMissingArgument = errors.New("missing required argument")

// ParamType is the JSON schema type of a tool parameter.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeObject ParamType = "object"
)

// Param describes one named argument of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Enum        []string
	Required    bool
}

// Definition is the function-calling declaration advertised to the model.
type Definition struct {
	Name        string
	Description string
	Params      []Param
}

// JSONSchema renders the parameters as an OpenAI-style JSON schema object.
func (d Definition) JSONSchema() map[string]any {
	properties := make(map[string]any, len(d.Params))
	required := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		prop := map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	out := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// ToolInfo converts the definition into eino's tool declaration.
func (d Definition) ToolInfo() *schema.ToolInfo {
	params := make(map[string]*schema.ParameterInfo, len(d.Params))
	for _, p := range d.Params {
		info := &schema.ParameterInfo{
			Desc:     p.Description,
			Enum:     p.Enum,
			Required: p.Required,
			Type:     schema.String,
		}
		if p.Type == TypeObject {
			info.Type = schema.Object
		}
		params[p.Name] = info
	}

	return &schema.ToolInfo{
		Name:        d.Name,
		Desc:        d.Description,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}
}

// Tool is a data lookup the model may invoke.
type Tool interface {
	Definition() Definition
	Run(ctx context.Context, args map[string]any) (any, error)
}

// Result is the outcome of a single tool call, ready to be sent back to the model.
type Result struct {
	CallID    string `json:"callId"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Content   string `json:"content"`
	Failed    bool   `json:"failed,omitempty"`
}

// Registry holds the tools in the order they are advertised.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry indexes the supplied tools by name.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Definition().Name
		if _, dup := r.byName[name]; dup {
			continue
		}
		r.tools = append(r.tools, t)
		r.byName[name] = t
	}
	return r
}

// Definitions lists every tool declaration in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	return defs
}

// Run executes one model-issued call. Failures never escape as Go errors: they
// are encoded as {"error": "..."} so the model can explain them to the user.
func (r *Registry) Run(ctx context.Context, call schema.ToolCall) Result {
	res := Result{
		CallID:    call.ID,
		Name:      call.Function.Name,
		Arguments: call.Function.Arguments,
	}
	log.Printf("[tools] executing %s args=%s", res.Name, res.Arguments)

	t, ok := r.byName[call.Function.Name]
	if !ok {
		res.Content, res.Failed = errorContent("Query not implemented"), true
		return res
	}

	args, err := parseArguments(call.Function.Arguments)
	if err != nil {
		res.Content, res.Failed = errorContent(err.Error()), true
		return res
	}
	if err := checkRequired(t.Definition(), args); err != nil {
		res.Content, res.Failed = errorContent(err.Error()), true
		return res
	}

	out, err := t.Run(ctx, args)
	if err != nil {
		log.Printf("[tools] %s failed: %v", res.Name, err)
		res.Content, res.Failed = errorContent(err.Error()), true
		return res
	}

	data, err := json.Marshal(out)
	if err != nil {
		res.Content, res.Failed = errorContent("failed to encode tool result"), true
		return res
	}
	res.Content = string(data)
	return res
}

func parseArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func checkRequired(def Definition, args map[string]any) error {
	for _, p := range def.Params {
		if !p.Required {
			continue
		}
		v, ok := args[p.Name]
		if !ok || v == nil {
			return fmt.Errorf("%w: %s", ErrMissingArgument, p.Name)
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %s", ErrMissingArgument, p.Name)
		}
	}
	return nil
}

func errorContent(msg string) string {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return string(data)
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}
