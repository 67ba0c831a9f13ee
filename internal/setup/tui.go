package setup

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/antonkh/paperdesk/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
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
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		provider    string
		mirror      string
		valuation   string
		listenAddr  string
		pageSizeStr string
		stateDir    string
		confirm     bool
	)

	// defaults
	listenAddr = ":8087"
	pageSizeStr = "20"
	stateDir = "./data"

	// step 1: welcome
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("PAPERDESK CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's get your dashboard running.\n"))

	// market data provider
	fmt.Println(stepStyle.Render("STEP 1: MARKET DATA"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Primary market data provider").
				Options(
					huh.NewOption("CoinGecko", "coingecko"),
					huh.NewOption("CoinPaprika", "coinpaprika"),
					huh.NewOption("Binance", "binance"),
				).
				Value(&provider),
		),
	).Run()
	if err != nil {
		return err
	}

	// mirror
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERDESK CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: FALLBACK"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Mirror provider used when the primary fails").
				Options(
					huh.NewOption("None", ""),
					huh.NewOption("CoinGecko", "coingecko"),
					huh.NewOption("CoinPaprika", "coinpaprika"),
					huh.NewOption("Binance", "binance"),
				).
				Value(&mirror),
		),
	).Run()
	if err != nil {
		return err
	}

	// portfolio valuation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERDESK CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: VALUATION"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Exchange used to price the paper portfolio").
				Options(
					huh.NewOption("None (balances only)", ""),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Hyperliquid", "hyperliquid"),
				).
				Value(&valuation),
		),
	).Run()
	if err != nil {
		return err
	}

	// server settings
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERDESK CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: SERVER"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("host:port the HTTP server binds to").
				Value(&listenAddr).
				Validate(validateListenAddr),
			huh.NewInput().
				Title("Page size").
				Description("Markets shown per page").
				Value(&pageSizeStr).
				Validate(validatePageSize),
			huh.NewInput().
				Title("State directory").
				Description("Where portfolio snapshots are stored").
				Value(&stateDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERDESK CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Provider: %s\nMirror: %s\nValuation: %s\nListen: %s\nPage size: %s\nState dir: %s\n",
		provider, orNone(mirror), orNone(valuation), listenAddr, pageSizeStr, stateDir,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	pageSize, _ := strconv.Atoi(pageSizeStr)

	cfgTmp := config.ConfigTmp{
		ListenAddr: listenAddr,
		Provider:   provider,
		Mirror:     mirror,
		Valuation:  valuation,
		PageSize:   pageSize,
		StateDir:   stateDir,
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting server...", filename)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func validateListenAddr(s string) error {
	if _, _, err := net.SplitHostPort(s); err != nil {
		return fmt.Errorf("expected host:port")
	}
	return nil
}

func validatePageSize(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n < 1 || n > 250 {
		return fmt.Errorf("must be between 1 and 250")
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
