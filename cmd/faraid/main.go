// Command faraid calculates Faraid inheritance shares from a family file.
//
//	faraid calculate -f family.yaml
//	faraid calculate -f family.json --estate 250000 --json
//	faraid classify -f family.yaml --gender female
package main

import (
	"fmt"
	"os"

	"github.com/amanah/faraid-engine/factory"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose        bool
	familyFile     string
	estateOverride string
	genderOverride string
	jsonOutput     bool

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "faraid",
	Short: "Faraid inheritance share calculator",
	Long: `faraid computes each eligible heir's share of an estate under the
fixed-share rules, the residuary (Asabah) rules and Radd.

The family file is YAML or JSON (chosen by extension):

  owner_gender: male
  estate_value: 100000
  heirs:
    - id: h1
      full_name: Aisyah
      relationship: wife`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config = zap.NewDevelopmentConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate each heir's share",
	Args:  cobra.NoArgs,
	RunE:  runCalculate,
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Show which heirs are eligible and why others are excluded",
	Args:  cobra.NoArgs,
	RunE:  runClassify,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&familyFile, "file", "f", "", "Family file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&genderOverride, "gender", "", "Owner gender, overrides the file (male|female)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	calculateCmd.Flags().StringVar(&estateOverride, "estate", "", "Estate value, overrides the file")
	_ = rootCmd.MarkPersistentFlagRequired("file")

	rootCmd.AddCommand(calculateCmd, classifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadFamily reads the family file and applies the command-line overrides.
// requireValue is false for commands that ignore the estate value.
func loadFamily(requireValue bool) (*factory.Family, error) {
	f := factory.NewFamilyFactory()

	ff, err := f.ReadFile(familyFile)
	if err != nil {
		return nil, err
	}
	if genderOverride != "" {
		ff.OwnerGender = genderOverride
	}
	if estateOverride != "" {
		v, err := decimal.NewFromString(estateOverride)
		if err != nil {
			return nil, fmt.Errorf("invalid --estate %q: %w", estateOverride, err)
		}
		ff.EstateValue = factory.NewAmount(v)
	}
	if !requireValue && ff.EstateValue == nil {
		ff.EstateValue = factory.NewAmount(decimal.Zero)
	}

	family, err := f.FromFile(*ff)
	if err != nil {
		return nil, err
	}
	logger.Debug("family loaded",
		zap.String("file", familyFile),
		zap.Stringer("owner_gender", family.OwnerGender),
		zap.Stringer("estate_value", family.EstateValue),
		zap.Int("heirs", len(family.Heirs)),
	)
	return family, nil
}
