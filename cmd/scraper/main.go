package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"go-bosszp-automation/internal/auth"
	"go-bosszp-automation/internal/browser"
	"go-bosszp-automation/internal/config"
	"go-bosszp-automation/internal/reporter"
	"go-bosszp-automation/internal/scraper/boss"
	"go-bosszp-automation/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	if err := run(logger); err != nil {
		logger.Fatalf("❌ %v", err)
	}
}

// run keeps all the defers in one place so the browser is released no matter
// where the flow aborts.
func run(logger *log.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Println("🔧 Config loaded.")

	bot, err := reporter.NewTelegramReporter(cfg)
	if err != nil {
		return fmt.Errorf("failed to init telegram reporter: %w", err)
	}
	if bot != nil {
		logger.Println("🤖 Telegram reporter enabled.")
	}

	runName := fmt.Sprintf("boss_jobs_%s.csv", time.Now().Format("20060102_150405"))
	st, err := store.NewRecordStore(cfg.DataDir, runName, logger)
	if err != nil {
		return err
	}
	logger.Printf("📝 Run table: %s", st.RunFile())

	logger.Println("🚀 Starting boss-zhipin automation...")
	pm, err := browser.NewPlaywright(cfg.BaseURL, cfg.Headless)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer pm.Close()

	browserCtx, err := pm.NewContext(nil)
	if err != nil {
		return err
	}
	page, err := browserCtx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	logger.Println("✅ Browser initialized successfully!")

	//1. authenticate (cookies first, QR challenge if needed)
	lm := auth.NewLoginManager(page, cfg, logger)
	if err := lm.Login(); err != nil {
		bot.SendError(err)
		return fmt.Errorf("login failed: %w", err)
	}

	//2. walk the interested-jobs listing; records stream to the run table
	walker := boss.NewWalker(page, cfg, st, logger)
	count, walkErr := walker.Walk()
	if walkErr != nil {
		//partial results are already on disk, finish the pipeline with them
		logger.Printf("⚠️ Walk aborted early: %v", walkErr)
		bot.SendError(walkErr)
	}

	if count == 0 {
		logger.Println("ℹ️ No records captured this run, master left untouched.")
		return walkErr
	}

	//3. finalize: secondary format and master merge
	if err := st.ConvertRunToJSON(); err != nil {
		logger.Printf("⚠️ JSON conversion failed: %v", err)
	}
	stats, err := st.MergeIntoMaster()
	if err != nil {
		return fmt.Errorf("master merge failed: %w", err)
	}

	logger.Printf("🏁 Run complete: %d records captured, master table holds %d.", count, stats.After)
	if err := bot.SendSummary(count, stats); err != nil {
		logger.Printf("⚠️ Failed to send telegram summary: %v", err)
	}
	return walkErr
}
