package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/nucleus/internal/dna"
	"github.com/roach88/nucleus/internal/ir"
	"github.com/roach88/nucleus/internal/ribosome"
)

// DNASummary describes a loaded DNA.
type DNASummary struct {
	Name    string        `json:"name"`
	Version string        `json:"version,omitempty"`
	Address ir.Address    `json:"address"`
	Zomes   []ZomeSummary `json:"zomes"`
}

// ZomeSummary lists a zome's entry types in name order.
type ZomeSummary struct {
	Name       string             `json:"name"`
	EntryTypes []EntryTypeSummary `json:"entry_types"`
}

// EntryTypeSummary describes one entry type.
type EntryTypeSummary struct {
	Name              ir.EntryType `json:"name"`
	Sharing           dna.Sharing  `json:"sharing"`
	ValidationPackage string       `json:"validation_package"`
	Validate          string       `json:"validate,omitempty"`
}

// NewDNACommand creates the dna command.
func NewDNACommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dna <file>",
		Short: "Check a DNA definition and print its address",
		Long: `Load a DNA definition, check it against the schema, compile its
validation rules and print its zomes and content address.

Example:
  nucleus dna ./blog.cue
  nucleus dna ./blog.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showDNA(rootOpts, args[0], cmd)
		},
	}
}

func showDNA(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	d, err := dna.Load(path)
	if err != nil {
		_ = out.Error("E001", "invalid DNA", err.Error())
		return WrapExitError(ExitCommandError, "failed to load DNA", err)
	}
	if _, err := ribosome.NewCEL(d); err != nil {
		_ = out.Error("E002", "invalid validation rules", err.Error())
		return WrapExitError(ExitCommandError, "failed to compile validation rules", err)
	}
	out.VerboseLog("loaded %s with %d zomes", path, len(d.Zomes))

	summary := summarizeDNA(d)
	return out.Success(summary, func(w io.Writer) {
		fmt.Fprintf(w, "DNA %s", summary.Name)
		if summary.Version != "" {
			fmt.Fprintf(w, " %s", summary.Version)
		}
		fmt.Fprintf(w, "\naddress: %s\n", summary.Address)
		for _, z := range summary.Zomes {
			fmt.Fprintf(w, "zome %s\n", z.Name)
			for _, et := range z.EntryTypes {
				fmt.Fprintf(w, "  %-16s %-8s %s\n", et.Name, et.Sharing, et.ValidationPackage)
			}
		}
	})
}

func summarizeDNA(d *dna.DNA) DNASummary {
	s := DNASummary{Name: d.Name, Version: d.Version, Address: d.Address()}
	for _, name := range d.ZomeNames() {
		z := d.Zomes[name]
		zs := ZomeSummary{Name: name}
		for t, def := range z.EntryTypes {
			pkg := string(def.ValidationPackage.Kind)
			if def.ValidationPackage.Kind == ir.DefinitionCustom {
				pkg = fmt.Sprintf("custom(%s)", def.ValidationPackage.Custom)
			}
			zs.EntryTypes = append(zs.EntryTypes, EntryTypeSummary{
				Name:              t,
				Sharing:           def.Sharing,
				ValidationPackage: pkg,
				Validate:          def.Validate,
			})
		}
		sort.Slice(zs.EntryTypes, func(i, j int) bool { return zs.EntryTypes[i].Name < zs.EntryTypes[j].Name })
		s.Zomes = append(s.Zomes, zs)
	}
	return s
}
