package ribosome

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"

	"github.com/roach88/nucleus/internal/dna"
	"github.com/roach88/nucleus/internal/ir"
)

// CEL is a Ribosome whose validation rules are CEL expressions declared per
// entry type in the DNA. Every rule sees four variables:
//
//	entry              {type, value, link: {base, target, tag}}
//	validation_package {chain_header, source_chain_entries, source_chain_headers, custom}
//	lifecycle          "chain" | "dht" | "meta"
//	action             "create" | "modify" | "delete"
//
// plus sources, the list of authoring agent ids. A rule must evaluate to a
// bool; false rejects the entry with the declared reject reason.
type CEL struct {
	dna      *dna.DNA
	programs map[ir.EntryType]cel.Program
}

// NewCEL compiles every rule in d. A rule that fails to compile or does not
// return bool fails construction, so bad rules surface at load time.
func NewCEL(d *dna.DNA) (*CEL, error) {
	env, err := cel.NewEnv(
		cel.Variable("entry", cel.DynType),
		cel.Variable("validation_package", cel.DynType),
		cel.Variable("lifecycle", cel.StringType),
		cel.Variable("action", cel.StringType),
		cel.Variable("sources", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	r := &CEL{dna: d, programs: map[ir.EntryType]cel.Program{}}
	for _, zomeName := range d.ZomeNames() {
		for t, def := range d.Zomes[zomeName].EntryTypes {
			if def.Validate == "" {
				continue
			}
			ast, issues := env.Compile(def.Validate)
			if issues != nil && issues.Err() != nil {
				return nil, fmt.Errorf("compile rule for %s: %w", t, issues.Err())
			}
			if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
				return nil, fmt.Errorf("rule for %s returns %v, want bool", t, out)
			}
			prg, err := env.Program(ast, cel.InterruptCheckFrequency(100), cel.CostLimit(100000))
			if err != nil {
				return nil, fmt.Errorf("program for %s: %w", t, err)
			}
			r.programs[t] = prg
		}
	}
	return r, nil
}

// ValidationPackageDefinition implements Ribosome. System types the DNA
// does not declare need only their own header.
func (r *CEL) ValidationPackageDefinition(_ context.Context, t ir.EntryType) (ir.ValidationPackageDefinition, error) {
	if def, ok := r.dna.EntryType(t); ok {
		return def.ValidationPackage, nil
	}
	if t.IsSystem() {
		return ir.ValidationPackageDefinition{Kind: ir.DefinitionEntry}, nil
	}
	return ir.ValidationPackageDefinition{}, ErrNotImplemented
}

// ValidateEntry implements Ribosome.
func (r *CEL) ValidateEntry(ctx context.Context, entry ir.Entry, data ir.ValidationData) error {
	def, declared := r.dna.EntryType(entry.Type)
	if !declared && !entry.Type.IsSystem() {
		return ir.ValidationFailed(fmt.Sprintf("Unknown entry type: '%s'", entry.Type))
	}
	prg, ok := r.programs[entry.Type]
	if !ok {
		return nil
	}

	out, _, err := prg.ContextEval(ctx, activation(entry, data))
	if err != nil {
		return ir.ErrorGenericf("validation rule for %s failed: %v", entry.Type, err)
	}
	valid, ok := out.Value().(bool)
	if !ok {
		return ir.ErrorGenericf("validation rule for %s returned %T, want bool", entry.Type, out.Value())
	}
	if valid {
		return nil
	}

	reason := def.RejectReason
	if reason == "" {
		reason = fmt.Sprintf("entry rejected by %s validation", entry.Type)
	}
	slog.Debug("entry rejected",
		"entry_type", entry.Type,
		"lifecycle", data.Lifecycle,
		"reason", reason,
	)
	return ir.ValidationFailed(reason)
}

func activation(entry ir.Entry, data ir.ValidationData) map[string]any {
	sources := data.Sources
	if sources == nil {
		sources = []string{}
	}
	return map[string]any{
		"entry":              entryValue(entry),
		"validation_package": packageValue(data.Package),
		"lifecycle":          string(data.Lifecycle),
		"action":             string(data.Action),
		"sources":            sources,
	}
}

func entryValue(e ir.Entry) map[string]any {
	link := map[string]any{"base": "", "target": "", "tag": ""}
	if e.Link != nil {
		link = map[string]any{
			"base":   string(e.Link.Base),
			"target": string(e.Link.Target),
			"tag":    e.Link.Tag,
		}
	}
	return map[string]any{
		"type":  string(e.Type),
		"value": e.Value,
		"link":  link,
	}
}

func headerValue(h ir.ChainHeader) map[string]any {
	sources := h.Sources
	if sources == nil {
		sources = []string{}
	}
	return map[string]any{
		"entry_type":     string(h.EntryType),
		"entry_address":  string(h.EntryAddress),
		"sources":        sources,
		"link":           string(h.Link),
		"link_same_type": string(h.LinkSameType),
		"seq":            h.Seq,
	}
}

func packageValue(p ir.ValidationPackage) map[string]any {
	out := map[string]any{
		"chain_header":         nil,
		"source_chain_entries": []any{},
		"source_chain_headers": []any{},
		"custom":               "",
	}
	if p.ChainHeader != nil {
		out["chain_header"] = headerValue(*p.ChainHeader)
	}
	entries := make([]any, 0, len(p.SourceChainEntries))
	for _, e := range p.SourceChainEntries {
		entries = append(entries, entryValue(e))
	}
	out["source_chain_entries"] = entries
	headers := make([]any, 0, len(p.SourceChainHeaders))
	for _, h := range p.SourceChainHeaders {
		headers = append(headers, headerValue(h))
	}
	out["source_chain_headers"] = headers
	if p.Custom != nil {
		out["custom"] = *p.Custom
	}
	return out
}
