package cmd

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/dkovalev83/ozon-scrap/config"
	"github.com/dkovalev83/ozon-scrap/internal/archive"
	"github.com/dkovalev83/ozon-scrap/internal/httputil"
	"github.com/dkovalev83/ozon-scrap/internal/logx"
	"github.com/dkovalev83/ozon-scrap/internal/ozon"
	"github.com/dkovalev83/ozon-scrap/internal/stealth"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ozonscrap",
	Short: "Ozon Scrap - seller catalog extraction CLI & MCP server",
	Long:  "A Go-based CLI tool and MCP server for extracting Ozon seller catalogs and product details.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("settings", "", "Path to settings.json with rotated headers/cookies")
	rootCmd.PersistentFlags().String("delay-profile", "normal", "Delay profile: cautious, normal, aggressive")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt rules")
	rootCmd.PersistentFlags().Bool("archive", false, "Archive every raw upstream response")
	rootCmd.PersistentFlags().String("archive-dir", "", "Archive directory")
	rootCmd.PersistentFlags().String("output-dir", "", "Export directory for result documents")
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose logging")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("settings"); v != "" {
		cfg.SettingsFile = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("delay-profile"); v != "" {
		cfg.DelayProfile = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("respect-robots"); !v {
		cfg.RespectRobots = false
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("archive"); v {
		cfg.ArchiveEnabled = true
	}
	if v, _ := rootCmd.PersistentFlags().GetString("archive-dir"); v != "" {
		cfg.ArchiveDir = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("output-dir"); v != "" {
		cfg.OutputDir = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("debug"); v {
		cfg.Debug = true
	}

	logx.Init(cfg.Debug)
	if err := cfg.LoadSettingsFile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildHTTPClient creates the stealth-wrapped HTTP client from config.
func buildHTTPClient() *http.Client {
	fpPool := stealth.NewFingerprintPool()
	delay := stealth.NewHumanDelay(stealth.DelayProfile(cfg.DelayProfile))
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)

	baseTransport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}

	var proxyRotator *stealth.ProxyRotator
	if cfg.ProxyURL != "" {
		if u, err := url.Parse(cfg.ProxyURL); err == nil {
			proxyRotator = stealth.NewProxyRotator([]stealth.ProxyProvider{
				&stealth.StaticProvider{ProxyURL: u},
			})
		}
	}

	robots := stealth.NewRobotsChecker(&http.Client{}, cfg.RespectRobots)

	return httputil.NewHTTPClient(&stealth.Transport{
		Base:        baseTransport,
		Robots:      robots,
		Fingerprint: fpPool,
		Proxy:       proxyRotator,
		Delay:       delay,
		RateLimiter: limiter,
	})
}

// newCrawler wires the crawl client with its archive.
func newCrawler() (*ozon.Client, error) {
	arc := archive.New(cfg.ArchiveDir, cfg.ArchiveEnabled)
	return ozon.NewClient(buildHTTPClient(), cfg, arc)
}
