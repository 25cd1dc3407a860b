// Package config loads the session configuration from YAML or CLI
// flags. Decimal fields travel as strings in YAML and are parsed here.
package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/7272yusuke-design/openclaw/internal/credit"
	"github.com/7272yusuke-design/openclaw/internal/guard"
)

// Config is the fully parsed session configuration.
type Config struct {
	// Platform market data venue: binance, bybit, hyperliquid or static.
	Platform string
	// Symbols assets the session trades, in priority order.
	Symbols []string
	// InitialBalance starting paper capital in USD.
	InitialBalance decimal.Decimal
	// StateDir directory holding the wallet file and the trade WAL.
	StateDir string
	// DirectivePath optional file an external planner drops directives into.
	DirectivePath string
	// PollInterval pause between trading cycles.
	PollInterval time.Duration

	Guard guard.Config

	// CallGuard bounds for re-entrant external calls.
	CallGuardMaxDepth     int
	CallGuardSafetyMargin float64

	// Profile the counterparty credit profile scored each cycle.
	Profile credit.Profile

	// DashboardAddr optional listen address for the status server.
	DashboardAddr string
	// DashboardDomain enables autocert TLS when set.
	DashboardDomain string
}

type configTmp struct {
	Platform          string        `yaml:"platform"`
	Symbols           []string      `yaml:"symbols"`
	InitialBalance    string        `yaml:"initial_balance"`
	StateDir          string        `yaml:"state_dir"`
	DirectivePath     string        `yaml:"directive_path,omitempty"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	MaxDailySpend     string        `yaml:"max_daily_spend"`
	StopLossThreshold string        `yaml:"stop_loss_threshold"`
	MinLiquidity      string        `yaml:"min_liquidity"`
	BaseAmount        string        `yaml:"base_amount"`
	MaxAmount         string        `yaml:"max_amount"`
	MaxDepth          int           `yaml:"call_guard_max_depth,omitempty"`
	SafetyMargin      float64       `yaml:"call_guard_safety_margin,omitempty"`
	Profile           profileTmp    `yaml:"credit_profile"`
	DashboardAddr     string        `yaml:"dashboard_addr,omitempty"`
	DashboardDomain   string        `yaml:"dashboard_domain,omitempty"`
}

type profileTmp struct {
	RepaymentHistory      float64 `yaml:"repayment_history"`
	CollateralValue       float64 `yaml:"collateral_value"`
	ExternalData          float64 `yaml:"external_data"`
	CommunityRating       float64 `yaml:"community_rating"`
	TransactionCompletion float64 `yaml:"transaction_completion"`
	ActivityLevel         float64 `yaml:"activity_level"`
}

// Get loads configuration from --config YAML when provided, otherwise
// from CLI flags with defaults suitable for an offline dry run.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	platform := flag.String("platform", "static", "market data platform: binance, bybit, hyperliquid, static")
	symbols := flag.String("symbols", "VIRTUAL", "comma-separated symbols to trade")
	initialBalance := flag.String("balance", "100000", "initial paper balance in USD")
	stateDir := flag.String("statedir", "data", "directory for wallet state and trade WAL")
	pollInterval := flag.Duration("pollinterval", 5*time.Minute, "pause between trading cycles")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	balance, err := decimal.NewFromString(*initialBalance)
	if err != nil {
		return Config{}, errors.Wrapf(err, "invalid --balance %q", *initialBalance)
	}

	cfg := Config{
		Platform:       *platform,
		Symbols:        splitSymbols(*symbols),
		InitialBalance: balance,
		StateDir:       *stateDir,
		PollInterval:   *pollInterval,
		Guard:          defaultGuardConfig(),
		Profile:        defaultProfile(),
	}
	return cfg, cfg.validate()
}

func getYaml(path string) (Config, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config file")
	}

	var tmp configTmp
	if err := yaml.Unmarshal(payload, &tmp); err != nil {
		return Config{}, errors.Wrap(err, "decode config file")
	}

	cfg := Config{
		Platform:              tmp.Platform,
		Symbols:               tmp.Symbols,
		StateDir:              tmp.StateDir,
		DirectivePath:         tmp.DirectivePath,
		PollInterval:          tmp.PollInterval,
		CallGuardMaxDepth:     tmp.MaxDepth,
		CallGuardSafetyMargin: tmp.SafetyMargin,
		DashboardAddr:         tmp.DashboardAddr,
		DashboardDomain:       tmp.DashboardDomain,
		Profile: credit.Profile{
			RepaymentHistory:      tmp.Profile.RepaymentHistory,
			CollateralValue:       tmp.Profile.CollateralValue,
			ExternalData:          tmp.Profile.ExternalData,
			CommunityRating:       tmp.Profile.CommunityRating,
			TransactionCompletion: tmp.Profile.TransactionCompletion,
			ActivityLevel:         tmp.Profile.ActivityLevel,
		},
	}

	if tmp.InitialBalance == "" {
		tmp.InitialBalance = "100000"
	}
	cfg.InitialBalance, err = parseDecimal(tmp.InitialBalance, "initial_balance")
	if err != nil {
		return Config{}, err
	}

	guardCfg := defaultGuardConfig()
	for _, field := range []struct {
		raw  string
		name string
		dst  *decimal.Decimal
	}{
		{tmp.MaxDailySpend, "max_daily_spend", &guardCfg.MaxDailySpend},
		{tmp.StopLossThreshold, "stop_loss_threshold", &guardCfg.StopLossThreshold},
		{tmp.MinLiquidity, "min_liquidity", &guardCfg.MinLiquidity},
		{tmp.BaseAmount, "base_amount", &guardCfg.BaseAmount},
		{tmp.MaxAmount, "max_amount", &guardCfg.MaxAmount},
	} {
		if field.raw == "" {
			continue
		}
		*field.dst, err = parseDecimal(field.raw, field.name)
		if err != nil {
			return Config{}, err
		}
	}
	cfg.Guard = guardCfg

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Platform {
	case "binance", "bybit", "hyperliquid", "static":
	default:
		return errors.Errorf("unsupported platform %q", c.Platform)
	}
	if len(c.Symbols) == 0 {
		return errors.New("at least one symbol is required")
	}
	if c.InitialBalance.LessThan(decimal.Zero) {
		return errors.New("initial balance must not be negative")
	}
	return c.Guard.Validate()
}

func defaultGuardConfig() guard.Config {
	return guard.Config{
		MaxDailySpend:     decimal.NewFromInt(10000),
		StopLossThreshold: decimal.NewFromInt(50000),
		MinLiquidity:      decimal.NewFromInt(10000),
		BaseAmount:        decimal.NewFromInt(100),
		MaxAmount:         decimal.NewFromInt(1000),
	}
}

func defaultProfile() credit.Profile {
	return credit.Profile{
		RepaymentHistory:      95,
		CollateralValue:       80,
		ExternalData:          70,
		CommunityRating:       85,
		TransactionCompletion: 90,
		ActivityLevel:         60,
	}
}

func parseDecimal(raw, name string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "invalid %s %q", name, raw)
	}
	return value, nil
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, strings.ToUpper(trimmed))
		}
	}
	return out
}
