// Package setup implements the interactive first-run configuration
// wizard. It writes a YAML file consumable by the config package.
package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)
)

type wizardConfig struct {
	Platform          string        `yaml:"platform"`
	Symbols           []string      `yaml:"symbols"`
	InitialBalance    string        `yaml:"initial_balance"`
	StateDir          string        `yaml:"state_dir"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	MaxDailySpend     string        `yaml:"max_daily_spend"`
	StopLossThreshold string        `yaml:"stop_loss_threshold"`
	MinLiquidity      string        `yaml:"min_liquidity"`
	BaseAmount        string        `yaml:"base_amount"`
	MaxAmount         string        `yaml:"max_amount"`
}

// RunTUI launches the terminal configuration wizard and writes the
// resulting YAML to path.
func RunTUI(path string) error {
	var (
		platform     = "static"
		symbol       = "VIRTUAL"
		balance      = "100000"
		pollInterval = "5m"
		dailySpend   = "10000"
		stopLoss     = "50000"
		minLiquidity = "10000"
		baseAmount   = "100"
		maxAmount    = "1000"
		confirm      bool
	)

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("OPENCLAW CONFIG WIZARD"))

	fmt.Println(stepStyle.Render("STEP 1: MARKET DATA"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Market data platform").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Hyperliquid", "hyperliquid"),
					huh.NewOption("Static (offline)", "static"),
				).
				Value(&platform),
			huh.NewInput().Title("Symbol to trade").Value(&symbol),
			huh.NewInput().Title("Poll interval (e.g. 5m)").Value(&pollInterval),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("STEP 2: LEDGER"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Initial paper balance (USD)").
				Validate(validateDecimal).
				Value(&balance),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("STEP 3: SAFETY POLICY"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Max daily spend (USD)").Validate(validateDecimal).Value(&dailySpend),
			huh.NewInput().Title("Stop-loss portfolio floor (USD)").Validate(validateDecimal).Value(&stopLoss),
			huh.NewInput().Title("Minimum pool liquidity (USD)").Validate(validateDecimal).Value(&minLiquidity),
			huh.NewInput().Title("Base trade size (USD)").Validate(validateDecimal).Value(&baseAmount),
			huh.NewInput().Title("Max trade size (USD)").Validate(validateDecimal).Value(&maxAmount),
		),
	).Run()
	if err != nil {
		return err
	}

	interval, err := time.ParseDuration(pollInterval)
	if err != nil {
		return fmt.Errorf("invalid poll interval %q: %w", pollInterval, err)
	}

	cfg := wizardConfig{
		Platform:          platform,
		Symbols:           []string{symbol},
		InitialBalance:    balance,
		StateDir:          "data",
		PollInterval:      interval,
		MaxDailySpend:     dailySpend,
		StopLossThreshold: stopLoss,
		MinLiquidity:      minLiquidity,
		BaseAmount:        baseAmount,
		MaxAmount:         maxAmount,
	}

	fmt.Println(stepStyle.Render("STEP 4: CONFIRM"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Write configuration to %s?", path)).
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup aborted")
	}

	payload, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Println(stepStyle.Render("Configuration written to " + path))
	return nil
}

func validateDecimal(s string) error {
	if _, err := decimal.NewFromString(s); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}
