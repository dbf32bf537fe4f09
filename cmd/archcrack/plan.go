package main

import (
	"fmt"
	"strings"

	"archcrack/internal/phaseplan"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewPlanCmd configures the 'plan' command. It takes no archive, so it's
// useful for previewing a strategy's phase breakdown offline.
func NewPlanCmd() *cobra.Command {
	var (
		digits, lower, upper, symbol bool
		minLen, maxLen                int
		strategy                      string
	)
	cmd := &cobra.Command{
		Use:     "plan",
		Short:   "Preview a brute-force phase plan without an archive",
		Long:    `Builds the ordered phase table a given charset/length/strategy selection would run, for previewing before an attack.`,
		Example: `  archcrack plan --lower --digits --min 4 --max 8 --strategy length-first`,
		Run: func(cmd *cobra.Command, args []string) {
			printCommandHeader("PHASE PLAN PREVIEW")

			strat, err := parseStrategy(strategy)
			if err != nil {
				handleCmdError("%v", err)
			}

			sel := phaseplan.Selection{
				Digits:  digits,
				Lower:   lower,
				Upper:   upper,
				Special: symbol,
				MinLen:  minLen,
				MaxLen:  maxLen,
			}

			phases, err := phaseplan.Plan(sel, strat)
			if err != nil {
				handleCmdError("Invalid plan: %v", err)
			}

			pterm.Success.Printf("%d phase(s) for strategy %s\n", len(phases), strategy)
			tableData := pterm.TableData{{"#", "Name", "Charset", "Mask", "Min", "Max"}}
			for i, p := range phases {
				tableData = append(tableData, []string{
					intToStr(i + 1), p.Name, p.Charset, p.Mask, intToStr(p.MinLen), intToStr(p.MaxLen),
				})
			}
			pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(tableData).Render()
		},
	}

	cmd.Flags().BoolVar(&digits, "digits", false, "Include digits (0-9)")
	cmd.Flags().BoolVar(&lower, "lower", false, "Include lowercase letters")
	cmd.Flags().BoolVar(&upper, "upper", false, "Include uppercase letters")
	cmd.Flags().BoolVar(&symbol, "symbols", false, "Include common symbols")
	cmd.Flags().IntVar(&minLen, "min", 4, "Minimum candidate length")
	cmd.Flags().IntVar(&maxLen, "max", 8, "Maximum candidate length")
	cmd.Flags().StringVar(&strategy, "strategy", "length-first", "length-first, pattern-first, smart-mix, or common-first")
	return cmd
}

func parseStrategy(s string) (phaseplan.Strategy, error) {
	switch strings.ToLower(s) {
	case "length-first":
		return phaseplan.LengthFirst, nil
	case "pattern-first":
		return phaseplan.PatternFirst, nil
	case "smart-mix":
		return phaseplan.SmartMix, nil
	case "common-first":
		return phaseplan.CommonFirst, nil
	default:
		return 0, &strategyError{s}
	}
}

type strategyError struct{ got string }

func (e *strategyError) Error() string {
	return "unknown strategy \"" + e.got + "\" (want length-first, pattern-first, smart-mix, or common-first)"
}

func intToStr(v int) string {
	return fmt.Sprintf("%d", v)
}
