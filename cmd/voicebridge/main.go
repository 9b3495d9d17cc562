// Package main is the entry point for voicebridge CLI
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/james-see/voicebridge/pkg/api"
	"github.com/james-see/voicebridge/pkg/config"
	"github.com/james-see/voicebridge/pkg/logging"
	"github.com/james-see/voicebridge/pkg/midiexport"
	"github.com/james-see/voicebridge/pkg/pattern"
	"github.com/james-see/voicebridge/pkg/tui"
	"github.com/james-see/voicebridge/pkg/voicing"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configFile string
	logLevel   string
	outputFile string
	cycles     int
	rangeLow   string
	rangeHigh  string
	dictionary string
	picker     string
	serverPort int
	fps        int
	frames     int
	cps        float64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "voicebridge",
	Short: "Voice chord patterns and drive shader parameters from patterns",
	Long: `voicebridge turns chord symbol patterns into voice-led note stacks and
evaluates parameter patterns as shader uniforms against a cycle clock.

Patterns are written in mini-notation.

Examples:
  voicebridge voice "<Dm7 G7> Cmaj7" --cycles 2
  voicebridge export "Dm7 G7 Cmaj7 Cmaj7" -o turnaround.mid
  voicebridge preview "hue=<0 0.25 0.5>" "shape=circle square" --frames 20
  voicebridge tui
  voicebridge serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var voiceCmd = &cobra.Command{
	Use:   "voice <pattern>",
	Short: "Print the voicings of a chord pattern",
	Args:  cobra.ExactArgs(1),
	RunE:  runVoice,
}

var exportCmd = &cobra.Command{
	Use:   "export <pattern>",
	Short: "Write a voiced chord pattern to a MIDI file or text listing",
	Long:  `Voices a chord pattern and writes it out. The format follows the output file extension (.mid, .midi or .txt).`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var previewCmd = &cobra.Command{
	Use:   "preview <name=pattern>...",
	Short: "Evaluate parameter patterns as shader uniforms, frame by frame",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPreview,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Float64Var(&cps, "cps", 0, "Cycles per second")

	voiceCmd.Long = fmt.Sprintf("Voices every chord of the pattern and prints the notes per cycle.\n\nDictionaries: %s\nPickers: %s",
		strings.Join(voicing.DictionaryNames(), ", "), strings.Join(voicing.PickerNames(), ", "))

	// Voicing flags
	for _, cmd := range []*cobra.Command{voiceCmd, exportCmd} {
		cmd.Flags().IntVarP(&cycles, "cycles", "n", 1, "Number of cycles")
		cmd.Flags().StringVar(&rangeLow, "range-low", "", "Lowest note of the voicing range")
		cmd.Flags().StringVar(&rangeHigh, "range-high", "", "Highest note of the voicing range")
		cmd.Flags().StringVarP(&dictionary, "dictionary", "d", "", "Voicing dictionary")
		cmd.Flags().StringVar(&picker, "picker", "", "Voicing picker")
	}

	// Export command
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = exportCmd.MarkFlagRequired("output")

	// Preview command
	previewCmd.Flags().IntVar(&fps, "fps", 0, "Frames per second")
	previewCmd.Flags().IntVar(&frames, "frames", 16, "Number of frames to render")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port")

	// Add commands
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the config file, if any, and applies the flags that were
// set on the command line over it.
func loadConfig(cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return cfg, zerolog.Nop(), err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("cps") {
		cfg.CPS = cps
	}
	if flags.Changed("range-low") {
		cfg.RangeLow = rangeLow
	}
	if flags.Changed("range-high") {
		cfg.RangeHigh = rangeHigh
	}
	if flags.Changed("dictionary") {
		cfg.Dictionary = dictionary
	}
	if flags.Changed("picker") {
		cfg.Picker = picker
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("port") {
		cfg.Port = serverPort
	}
	if err := cfg.Validate(); err != nil {
		return cfg, zerolog.Nop(), err
	}

	log := logging.New("voicebridge", cfg.LogLevel)
	log.Debug().Str("config", configFile).Str("range", cfg.RangeLow+".."+cfg.RangeHigh).Msg("configuration loaded")
	return cfg, log, nil
}

func runVoice(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cycles <= 0 {
		return fmt.Errorf("cycles must be positive, got %d", cycles)
	}

	_, views, err := tui.VoiceCycles(args[0], cfg, log, cycles)
	if err != nil {
		return err
	}
	for i, chords := range views {
		fmt.Printf("cycle %d\n", i)
		for _, ch := range chords {
			if ch.Err != nil {
				fmt.Printf("  %-14s %-8s ! %v\n", ch.Span, ch.Chord, ch.Err)
				continue
			}
			fmt.Printf("  %-14s %-8s %s\n", ch.Span, ch.Chord, strings.Join(ch.Notes, " "))
		}
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cycles <= 0 {
		return fmt.Errorf("cycles must be positive, got %d", cycles)
	}

	src, err := pattern.Mini(args[0])
	if err != nil {
		return err
	}
	opts, err := cfg.VoicingOptions(log)
	if err != nil {
		return err
	}
	voiced := voicing.Voicings(src, opts...)
	exp := midiexport.New(cycles,
		midiexport.WithCPS(cfg.CPS),
		midiexport.WithTicksPerQuarter(cfg.TicksPerQuarter),
	)

	fmt.Printf("Exporting %q -> %s\n", args[0], outputFile)
	if err := exp.ExportFile(voiced, outputFile); err != nil {
		return err
	}
	fmt.Println("Export complete!")
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the TUI owns the terminal, so voicing warnings are dropped
	return tui.Run(cfg, zerolog.Nop())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fmt.Printf("Starting API server on port %d...\n", cfg.Port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", cfg.Port)
	return api.StartServer(cfg, log)
}
