// debitnote serves the motor insurance debit note form and generates debit
// note PDFs through the remote document service.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/utilitycover/debitnote/api"
	"github.com/utilitycover/debitnote/internal/config"
	"github.com/utilitycover/debitnote/internal/debitnote"
	"github.com/utilitycover/debitnote/internal/form"
	"github.com/utilitycover/debitnote/internal/premium"
	"github.com/utilitycover/debitnote/pkg/models"
	"github.com/utilitycover/debitnote/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "debitnote",
	Short: "Motor insurance debit note generator",
	Long: `debitnote serves a data-entry form for motor insurance debit notes,
previews the premium as it is typed, and turns a completed record into a
PDF through the remote document service.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		logger = config.SetupLogging(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("debitnote %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the form server",
	Long:  "Serve the debit note form and its JSON API until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}
		noUI, _ := cmd.Flags().GetBool("no-ui")

		srv := api.NewServer(cfg, nil, api.WithLogger(logger), api.WithVersion(version))
		if noUI {
			srv.SetServeUI(false)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Starting debit note server on %s\n", cfg.API.Addr())
		return srv.Run(ctx, cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides api.port)")
	serveCmd.Flags().Bool("no-ui", false, "serve the API only, without the embedded form")
}

// --- Preview Command ---

// previewFlags maps preview flags onto the record fields they set.
var previewFlags = map[string]string{
	"sum-insured": models.FieldSumInsured,
	"rate":        models.FieldBasicPremiumRate,
	"excess":      models.FieldExcessProtector,
	"tl":          models.FieldTL,
	"sd":          models.FieldSD,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Compute the premium preview",
	Long:  "Compute basic and total premium the way the form does. Values are coerced exactly like form input.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := map[string]string{}
		for flag, field := range previewFlags {
			if cmd.Flags().Changed(flag) {
				fields[field], _ = cmd.Flags().GetString(flag)
			}
		}

		rec, err := form.ApplyAll(defaultRecord(), fields)
		if err != nil {
			return err
		}
		view := premium.ComputeView(rec)

		fmt.Printf("  Sum Insured:    %s\n", utils.FormatKES(rec.SumInsured))
		fmt.Printf("  Basic Premium:  %s (%s)\n", view.BasicDisplay, view.Rate)
		fmt.Printf("  Excess:         %s\n", utils.FormatKES(rec.ExcessProtector))
		fmt.Printf("  TL:             %s\n", utils.FormatKES(rec.TL))
		fmt.Printf("  SD:             %s\n", utils.FormatKES(rec.SD))
		fmt.Printf("  Total Premium:  %s\n", view.TotalDisplay)
		return nil
	},
}

func init() {
	previewCmd.Flags().String("sum-insured", "", "sum insured (KES)")
	previewCmd.Flags().String("rate", "", "basic premium rate in percent (default from form.default_rate)")
	previewCmd.Flags().String("excess", "", "excess protector (KES)")
	previewCmd.Flags().String("tl", "", "training levy (KES)")
	previewCmd.Flags().String("sd", "", "stamp duty (KES)")
}

// --- Generate Command ---

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a debit note PDF from a record file",
	Long: `Read a policy record from a YAML or JSON file, send it to the document
service and write the PDF into the output directory as
DebitNote_<vehicle>_<DD-MM-YYYY>.pdf.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		fields, err := loadRecordFile(file)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("generated-by") {
			fields[models.FieldGeneratedBy], _ = cmd.Flags().GetString("generated-by")
		}

		rec, err := form.ApplyAll(defaultRecord(), fields)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if missing := form.Validate(rec); len(missing) > 0 {
			for _, m := range missing {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", m.Field, m.Message)
			}
			return fmt.Errorf("%s: %d field(s) are not ready for submission", file, len(missing))
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Output.Dir
		}
		deliverer := debitnote.FileDeliverer{Dir: out}

		submitter := debitnote.NewSubmitter(debitnote.SubmitterConfig{
			Generator: debitnote.NewClient(debitnote.ClientConfig{
				Endpoint:  cfg.PDF.Endpoint,
				MaxBytes:  cfg.PDF.MaxBytes,
				UserAgent: cfg.PDF.UserAgent,
			}),
			Timeout:  cfg.PDF.Timeout,
			Location: utils.LoadLocation(cfg.Timezone),
			Logger:   logger,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := submitter.Submit(ctx, rec, deliverer)
		if err != nil {
			fmt.Fprintln(os.Stderr, debitnote.FailureNotice)
			return err
		}

		fmt.Printf("Debit note written to %s (%d bytes, %s)\n",
			deliverer.Path(res.Filename), res.Size, res.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("file", "f", "", "policy record file (.yaml, .yml or .json)")
	generateCmd.Flags().StringP("out", "o", "", "output directory (default from output.dir)")
	generateCmd.Flags().String("generated-by", "", "name printed as the note's author")
	_ = generateCmd.MarkFlagRequired("file")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := utils.LoadLocation(cfg.Timezone)

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  debitnote — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time:          %s\n", utils.FormatDateTime(time.Now().In(loc)))
		fmt.Printf("  Issue date:    %s\n", utils.FormatDateIssued(time.Now().In(loc)))
		fmt.Println()

		fmt.Println("  Configuration:")
		for _, s := range config.CheckSettings(cfg) {
			fmt.Printf("    %-18s %-45s [%s]\n", s.Name+":", s.Value, s.Source)
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// defaultRecord is the record a new form starts with under the current config.
func defaultRecord() models.PolicyRecord {
	rec := models.DefaultRecord()
	rec.BasicPremiumRate = cfg.Form.DefaultRate
	return rec
}
