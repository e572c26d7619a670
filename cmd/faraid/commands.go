package main

import (
	"fmt"
	"io"

	"github.com/amanah/faraid-engine/api"
	"github.com/amanah/faraid-engine/faraid"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runCalculate(cmd *cobra.Command, args []string) error {
	family, err := loadFamily(true)
	if err != nil {
		return err
	}

	d := faraid.Compute(family.Heirs, family.EstateValue, family.OwnerGender)
	logger.Debug("calculated",
		zap.String("residual", string(d.Residual)),
		zap.Stringer("total_allocated", d.TotalAllocated),
		zap.Bool("awl_required", d.AwlRequired),
	)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, api.NewCalculationDTO(d))
	}
	fmt.Fprint(out, renderDistribution(d))
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	family, err := loadFamily(false)
	if err != nil {
		return err
	}

	c := faraid.Classify(family.Heirs, family.OwnerGender)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, api.NewClassifyResponse(c))
	}
	fmt.Fprint(out, renderClassification(c))
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
