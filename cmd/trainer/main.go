package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matchminds/backend/internal/trainer"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configPath  string
	datasetPath string
	artifactDir string
	clusters    int
	seed        uint64
)

var rootCmd = &cobra.Command{
	Use:          "trainer",
	Short:        "Fit the friendship clustering model",
	SilenceUsage: true,
	Long: `trainer reads the survey dataset, scales its numeric columns, fits k-means
and writes the scaler, model, feature schema and clustered dataset that the
server loads at startup.`,
}

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Train and write artifacts",
	RunE:  runFit,
}

var elbowCmd = &cobra.Command{
	Use:   "elbow",
	Short: "Print inertia for a range of k without writing artifacts",
	RunE:  runElbow,
}

var kMin, kMax int

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML options file")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "dataset CSV (overrides config)")
	rootCmd.PersistentFlags().StringVar(&artifactDir, "artifacts", "", "artifact directory (overrides config)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "random seed (overrides config)")
	fitCmd.Flags().IntVarP(&clusters, "clusters", "k", 0, "number of clusters (overrides config)")
	elbowCmd.Flags().IntVar(&kMin, "min", 2, "smallest k")
	elbowCmd.Flags().IntVar(&kMax, "max", 10, "largest k")

	rootCmd.AddCommand(fitCmd, elbowCmd)
}

func loadOptions(cmd *cobra.Command) (trainer.Options, error) {
	opts, err := trainer.LoadOptions(configPath)
	if err != nil {
		return opts, err
	}
	if cmd.Flags().Changed("dataset") {
		opts.DatasetPath = datasetPath
	}
	if cmd.Flags().Changed("artifacts") {
		opts.ArtifactDir = artifactDir
	}
	if cmd.Flags().Changed("seed") {
		opts.KMeans.Seed = seed
	}
	if cmd.Flags().Changed("clusters") {
		opts.KMeans.K = clusters
	}
	return opts, nil
}

func runFit(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	report, err := trainer.Train(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	return printYAML(report)
}

func runElbow(cmd *cobra.Command, args []string) error {
	if kMin < 1 || kMax < kMin {
		return fmt.Errorf("need 1 <= min <= max, got min=%d max=%d", kMin, kMax)
	}
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	points, err := trainer.Elbow(cmd.Context(), opts, kMin, kMax)
	if err != nil {
		return err
	}
	return printYAML(points)
}

func printYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
