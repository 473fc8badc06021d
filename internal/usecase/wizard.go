package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dkozlov/gate_rollover_bot/internal/domain"
)

// WizardStep enumerates the linear parameter-collection flow.
type WizardStep int

const (
	StepSymbol WizardStep = iota
	StepEntryType
	StepEntryPrice
	StepLeverage
	StepMargin
	StepRolloverCount
	StepInterval
	StepConfirm
	StepDone
)

const (
	minLeverage      = 1
	maxLeverage      = 100
	minRolloverCount = 1
	maxRolloverCount = 10
)

// Wizard collects strategy parameters one message at a time. Each
// conversation owns its own Wizard instance; there is no shared
// session registry, so concurrent conversations cannot observe each
// other's state.
type Wizard struct {
	step   WizardStep
	params domain.StrategyParameters
}

func NewWizard() *Wizard {
	return &Wizard{step: StepSymbol}
}

// Done reports whether the parameter set is complete and confirmed.
func (w *Wizard) Done() bool { return w.step == StepDone }

// Params returns the collected parameters. Valid only once Done.
func (w *Wizard) Params() domain.StrategyParameters { return w.params }

// Prompt returns the question for the current step.
func (w *Wizard) Prompt() string {
	switch w.step {
	case StepSymbol:
		return "Enter the contract (e.g. BTC_USDT):"
	case StepEntryType:
		return "Entry type:\n1. market\n2. limit\nEnter 1 or 2:"
	case StepEntryPrice:
		return "Enter the limit entry price:"
	case StepLeverage:
		return fmt.Sprintf("Enter leverage (%d-%d):", minLeverage, maxLeverage)
	case StepMargin:
		return "Enter margin in USDT:"
	case StepRolloverCount:
		return fmt.Sprintf("Enter rollover count (%d-%d):", minRolloverCount, maxRolloverCount)
	case StepInterval:
		return "Enter price increase per rollover in percent (e.g. 2):"
	case StepConfirm:
		return w.summary() + "\nExecute? (yes/no)"
	default:
		return ""
	}
}

// Handle consumes one user message. It returns the next prompt (or a
// re-prompt when the input is invalid) and whether the conversation
// finished. A "no" at the confirmation step finishes without
// confirming; callers check Done to distinguish the two.
func (w *Wizard) Handle(input string) (reply string, finished bool) {
	input = strings.TrimSpace(input)

	switch w.step {
	case StepSymbol:
		symbol := strings.ToUpper(strings.ReplaceAll(input, "/", "_"))
		if symbol == "" || !strings.Contains(symbol, "_") {
			return "Contract must look like BTC_USDT. " + w.Prompt(), false
		}
		w.params.Symbol = symbol
		w.step = StepEntryType

	case StepEntryType:
		switch input {
		case "1", string(domain.EntryMarket):
			w.params.EntryType = domain.EntryMarket
			w.step = StepLeverage
		case "2", string(domain.EntryLimit):
			w.params.EntryType = domain.EntryLimit
			w.step = StepEntryPrice
		default:
			return "Enter 1 (market) or 2 (limit):", false
		}

	case StepEntryPrice:
		price, err := decimal.NewFromString(input)
		if err != nil || !price.IsPositive() {
			return "Price must be a positive number. " + w.Prompt(), false
		}
		w.params.EntryPrice = price
		w.step = StepLeverage

	case StepLeverage:
		leverage, err := strconv.Atoi(input)
		if err != nil || leverage < minLeverage || leverage > maxLeverage {
			return fmt.Sprintf("Leverage must be an integer between %d and %d:", minLeverage, maxLeverage), false
		}
		w.params.Leverage = leverage
		w.step = StepMargin

	case StepMargin:
		margin, err := decimal.NewFromString(input)
		if err != nil || !margin.IsPositive() {
			return "Margin must be a positive number of USDT:", false
		}
		w.params.MarginUSDT = margin
		w.step = StepRolloverCount

	case StepRolloverCount:
		count, err := strconv.Atoi(input)
		if err != nil || count < minRolloverCount || count > maxRolloverCount {
			return fmt.Sprintf("Rollover count must be an integer between %d and %d:", minRolloverCount, maxRolloverCount), false
		}
		w.params.RolloverCount = count
		w.step = StepInterval

	case StepInterval:
		interval, err := decimal.NewFromString(input)
		if err != nil || !interval.IsPositive() {
			return "Interval must be a positive percentage:", false
		}
		w.params.IntervalPercent = interval
		w.step = StepConfirm

	case StepConfirm:
		switch strings.ToLower(input) {
		case "yes", "y":
			w.step = StepDone
			return "", true
		case "no", "n":
			return "Cancelled.", true
		default:
			return "Please answer yes or no:", false
		}

	default:
		return "", true
	}

	return w.Prompt(), false
}

// summary previews the run, including the ladder the calculator will
// produce, before anything touches the exchange. For a market entry
// the preview prices are unknown until execution, so the ladder part
// is shown only for limit entries.
func (w *Wizard) summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order summary:\n")
	fmt.Fprintf(&b, "  contract: %s\n", w.params.Symbol)
	fmt.Fprintf(&b, "  entry: %s", w.params.EntryType)
	if w.params.EntryType == domain.EntryLimit {
		fmt.Fprintf(&b, " @ %s", w.params.EntryPrice.String())
	}
	fmt.Fprintf(&b, "\n  leverage: %dx\n", w.params.Leverage)
	fmt.Fprintf(&b, "  margin: %s USDT\n", w.params.MarginUSDT.String())
	fmt.Fprintf(&b, "  rollovers: %d at +%s%%\n", w.params.RolloverCount, w.params.IntervalPercent.String())

	if w.params.EntryType == domain.EntryLimit {
		levels := BuildLadder(w.params.EntryPrice, w.params.MarginUSDT, w.params.Leverage,
			w.params.RolloverCount, w.params.IntervalPercent)
		fmt.Fprintf(&b, "Planned ladder (%d contracts per rung):\n", levels[0].ContractSize)
		for _, l := range levels {
			fmt.Fprintf(&b, "  #%d trigger %s\n", l.Index, l.TriggerPrice.String())
		}
	}
	return b.String()
}
