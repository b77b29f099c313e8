package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/niio972/phis-ws/internal/docstore"
	"github.com/niio972/phis-ws/internal/store"
)

// Fixtures is the content of a fixtures file.
type Fixtures struct {
	Experiments []store.Experiment    `yaml:"experiments"`
	Provenances []docstore.Provenance `yaml:"provenances"`
	Data        []docstore.Data       `yaml:"data"`
}

// LoadSummary reports what a load stored.
type LoadSummary struct {
	Experiments []string `json:"experiments"`
	Provenances int      `json:"provenances"`
	Data        []string `json:"data"`
}

func (s LoadSummary) String() string {
	return fmt.Sprintf("Loaded %d experiment(s), %d provenance(s), %d data record(s)",
		len(s.Experiments), s.Provenances, len(s.Data))
}

// ParseFixtures decodes a fixtures file, rejecting unknown keys.
func ParseFixtures(raw []byte) (Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	return f, nil
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <fixtures.yaml>",
		Short: "Load experiments, provenances and data from a YAML file",
		Long: `Load experiments, provenances and data from a YAML file.

Experiments go to the relational store; provenances and data to the
document store. Provenances are stored before data, so data may refer to
provenances of the same file.

Example:
  phis-ws load --config ./phis.yaml ./fixtures.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runLoad(opts *RootOptions, path string, cmd *cobra.Command) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read fixtures", err)
	}
	fx, err := ParseFixtures(raw)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid fixtures", err)
	}

	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()
	var sum LoadSummary

	if len(fx.Experiments) > 0 {
		out.VerboseLog("loading %d experiment(s)", len(fx.Experiments))
		sum.Experiments, err = a.expSvc.Create(ctx, fx.Experiments)
		if err != nil {
			return wrapServiceError("failed to load experiments", err)
		}
	}

	if len(fx.Provenances) > 0 {
		out.VerboseLog("loading %d provenance(s)", len(fx.Provenances))
		if err := a.docs.PutProvenances(ctx, fx.Provenances); err != nil {
			return wrapServiceError("failed to load provenances", err)
		}
		sum.Provenances = len(fx.Provenances)
	}

	if len(fx.Data) > 0 {
		out.VerboseLog("loading %d data record(s)", len(fx.Data))
		sum.Data, err = a.docs.PutData(ctx, fx.Data)
		if err != nil {
			return wrapServiceError("failed to load data", err)
		}
	}

	a.log.Info().
		Int("experiments", len(sum.Experiments)).
		Int("provenances", sum.Provenances).
		Int("data", len(sum.Data)).
		Msg("fixtures loaded")
	return out.Success(sum)
}
