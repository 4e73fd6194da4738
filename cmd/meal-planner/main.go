package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"school-meal-planner/internal/app"
	"school-meal-planner/internal/config"
	"school-meal-planner/internal/logging"
	"school-meal-planner/internal/planner"
	"school-meal-planner/internal/session"

	"go.uber.org/zap"
)

// cliSession is the workspace key used for one-shot command-line runs.
const cliSession = "cli"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "render":
		renderCmd := flag.NewFlagSet("render", flag.ExitOnError)
		asJSON := renderCmd.Bool("json", false, "Print the parsed blocks as JSON")
		style := renderCmd.String("style", "auto", "Glamour style (auto, dark, light, notty)")
		renderCmd.Parse(os.Args[2:])
		if renderCmd.NArg() != 1 {
			log.Fatal("Usage: meal-planner render [-json] [-style auto] <file|->")
		}

		text, err := readInput(renderCmd.Arg(0))
		if err != nil {
			log.Fatalf("Failed to read input: %v", err)
		}
		if *asJSON {
			if err := printJSON(parseForJSON(text)); err != nil {
				log.Fatalf("Failed to encode result: %v", err)
			}
			return
		}
		if err := renderPlan(os.Stdout, text, *style); err != nil {
			log.Fatalf("Failed to render plan: %v", err)
		}

	case "generate":
		generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
		defaults := planner.DefaultRequest(time.Now())
		date := generateCmd.String("date", defaults.Date, "Meal date (YYYY-MM-DD)")
		day := generateCmd.String("day", defaults.Day, "Day of the week, e.g. 월요일")
		menuType := generateCmd.String("menu-type", defaults.MenuType, "Menu type: "+strings.Join(planner.MenuTypes, ", "))
		allergens := generateCmd.String("allergens", "", "Comma-separated allergens to exclude")
		constraints := generateCmd.String("constraints", "", "Ingredient constraints")
		nutrition := generateCmd.String("nutrition", defaults.NutritionGoals, "Nutrition goals")
		previous := generateCmd.String("previous", "", "Previous menus to avoid")
		fromHistory := generateCmd.Int("from-history", 0, "Fill previous menus from the last N stored plans")
		importURL := generateCmd.String("import-url", "", "Fill previous menus from a web page")
		lookup := generateCmd.Bool("lookup", false, "Also look up ingredient prices and supply")
		share := generateCmd.Bool("share", false, "Send the plan to the configured Telegram chat")
		style := generateCmd.String("style", "auto", "Glamour style (auto, dark, light, notty)")
		generateCmd.Parse(os.Args[2:])

		application, closeApp := bootstrap(ctx)
		defer closeApp()

		req := planner.MealRequest{
			Date:                  *date,
			Day:                   *day,
			MenuType:              *menuType,
			IngredientConstraints: *constraints,
			Allergens:             splitList(*allergens),
			NutritionGoals:        *nutrition,
			PreviousMenus:         *previous,
		}
		if *fromHistory > 0 {
			menus, err := application.PreviousMenus(ctx, *fromHistory)
			if err != nil {
				log.Fatalf("Failed to load previous menus: %v", err)
			}
			req.PreviousMenus = joinNonEmpty(req.PreviousMenus, menus)
		}
		if *importURL != "" {
			menus, err := application.ImportPreviousMenus(ctx, *importURL)
			if err != nil {
				log.Fatalf("Failed to import previous menus: %v", err)
			}
			req.PreviousMenus = joinNonEmpty(req.PreviousMenus, menus)
		}

		fmt.Printf("Generating meal plan for %s (%s)...\n", req.Date, req.Day)
		snap, err := application.GeneratePlan(ctx, cliSession, req)
		if err != nil {
			log.Fatalf("Invalid request: %v", err)
		}
		if snap.PlanStatus != session.StatusSucceeded {
			log.Fatal(snap.PlanError)
		}
		if err := renderPlan(os.Stdout, snap.ResponseText, *style); err != nil {
			log.Fatalf("Failed to render plan: %v", err)
		}

		if *lookup {
			if !snap.LookupOffered {
				fmt.Println("No ingredient list found in the plan; skipping lookup.")
			} else {
				snap, err = application.LookupIngredients(ctx, cliSession)
				if err != nil {
					log.Fatalf("Lookup failed: %v", err)
				}
				if snap.IngredientStatus != session.StatusSucceeded {
					log.Fatal(snap.IngredientError)
				}
				printIngredients(os.Stdout, snap.Ingredients)
			}
		}

		if *share {
			if err := application.Share(ctx, cliSession); err != nil {
				log.Fatalf("Share failed: %v", err)
			}
			fmt.Println("Plan shared to Telegram.")
		}

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		application, closeApp := bootstrap(ctx)
		defer closeApp()

		affected, err := application.CleanupMetrics(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)

	case "metrics-report":
		reportCmd := flag.NewFlagSet("metrics-report", flag.ExitOnError)
		days := reportCmd.Int("days", 7, "Report the last N days")
		send := reportCmd.Bool("send", false, "Send the report to the configured Telegram chat")
		reportCmd.Parse(os.Args[2:])

		application, closeApp := bootstrap(ctx)
		defer closeApp()

		if *send {
			if err := application.SendUsageReport(ctx, *days); err != nil {
				log.Fatalf("Failed to send report: %v", err)
			}
			fmt.Println("Usage report sent.")
			return
		}
		report, err := application.Usage(ctx, *days)
		if err != nil {
			log.Fatalf("Failed to collect usage: %v", err)
		}
		if err := printJSON(report); err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context) (*app.App, func()) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	application, closeApp, err := app.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	return application, func() {
		closeApp()
		_ = logger.Sync()
	}
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

func printUsage() {
	fmt.Println("Usage: meal-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  render <file|->      Parse a saved plan and preview it in the terminal")
	fmt.Println("  generate             Generate a plan from flags and preview it")
	fmt.Println("  metrics-cleanup      Remove old LLM usage records (-days N)")
	fmt.Println("  metrics-report       Print or send recent LLM usage (-days N, -send)")
}
