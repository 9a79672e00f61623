package dna

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/nucleus/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// Error codes for DNA loading.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeMissingDNA  = "E201" // No top-level dna field
	ErrCodeInvalidDNA  = "E202" // DNA does not satisfy the schema
)

// LoadError is a DNA loading failure with its CUE position, if known.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads a DNA from a .cue file or a directory holding one CUE package.
// The definition must live under a top-level "dna" field.
func Load(path string) (*DNA, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("dna path not found: %s", path)}
	}

	cfg := &load.Config{Dir: path}
	args := []string{"."}
	if !info.IsDir() {
		cfg.Dir = filepath.Dir(path)
		args = []string{filepath.Base(path)}
	}

	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	ctx := cuecontext.New()
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return fromValue(ctx, value)
}

// Parse reads a DNA from CUE source text.
func Parse(src string) (*DNA, error) {
	ctx := cuecontext.New()
	value := ctx.CompileString(src, cue.Filename("dna.cue"))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(ErrCodeBuildFailed, err)
	}
	return fromValue(ctx, value)
}

func fromValue(ctx *cue.Context, value cue.Value) (*DNA, error) {
	dnaVal := value.LookupPath(cue.ParsePath("dna"))
	if !dnaVal.Exists() {
		return nil, &LoadError{Code: ErrCodeMissingDNA, Message: "no top-level dna field", Pos: value.Pos()}
	}

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(ErrCodeGeneric, err)
	}
	unified := schema.LookupPath(cue.ParsePath("#DNA")).Unify(dnaVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(ErrCodeInvalidDNA, err)
	}

	return compileDNA(unified)
}

func compileDNA(v cue.Value) (*DNA, error) {
	d := &DNA{Zomes: map[string]Zome{}}

	var err error
	if d.Name, err = v.LookupPath(cue.ParsePath("name")).String(); err != nil {
		return nil, formatCUEError(ErrCodeInvalidDNA, err)
	}
	if d.Version, err = v.LookupPath(cue.ParsePath("version")).String(); err != nil {
		return nil, formatCUEError(ErrCodeInvalidDNA, err)
	}

	zomes, err := v.LookupPath(cue.ParsePath("zomes")).Fields()
	if err != nil {
		return nil, formatCUEError(ErrCodeInvalidDNA, err)
	}
	for zomes.Next() {
		z, err := compileZome(zomes.Selector().Unquoted(), zomes.Value())
		if err != nil {
			return nil, err
		}
		d.Zomes[z.Name] = z
	}

	seen := map[ir.EntryType]string{}
	for _, name := range d.ZomeNames() {
		for t := range d.Zomes[name].EntryTypes {
			if other, dup := seen[t]; dup {
				return nil, &LoadError{
					Code:    ErrCodeInvalidDNA,
					Message: fmt.Sprintf("entry type %q declared by zomes %q and %q", t, other, name),
				}
			}
			seen[t] = name
		}
	}
	return d, nil
}

func compileZome(name string, v cue.Value) (Zome, error) {
	z := Zome{Name: name, EntryTypes: map[ir.EntryType]EntryTypeDef{}}

	types, err := v.LookupPath(cue.ParsePath("entry_types")).Fields()
	if err != nil {
		return z, formatCUEError(ErrCodeInvalidDNA, err)
	}
	for types.Next() {
		def, err := compileEntryType(ir.EntryType(types.Selector().Unquoted()), types.Value())
		if err != nil {
			return z, err
		}
		z.EntryTypes[def.Name] = def
	}
	return z, nil
}

func compileEntryType(t ir.EntryType, v cue.Value) (EntryTypeDef, error) {
	def := EntryTypeDef{Name: t}

	sharing, err := v.LookupPath(cue.ParsePath("sharing")).String()
	if err != nil {
		return def, formatCUEError(ErrCodeInvalidDNA, err)
	}
	def.Sharing = Sharing(sharing)

	pkgVal := v.LookupPath(cue.ParsePath("validation_package"))
	if kind, err := pkgVal.String(); err == nil {
		def.ValidationPackage = ir.ValidationPackageDefinition{Kind: ir.DefinitionKind(kind)}
	} else {
		custom, err := pkgVal.LookupPath(cue.ParsePath("custom")).String()
		if err != nil {
			return def, formatCUEError(ErrCodeInvalidDNA, err)
		}
		def.ValidationPackage = ir.CustomDefinition(custom)
	}

	if def.Validate, err = optionalString(v, "validate"); err != nil {
		return def, err
	}
	if def.RejectReason, err = optionalString(v, "reject_reason"); err != nil {
		return def, err
	}
	return def, nil
}

// optionalString reads an optional string field; unset yields "".
func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() || !fv.IsConcrete() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(ErrCodeInvalidDNA, err)
	}
	return s, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(code string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
