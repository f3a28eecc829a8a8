package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"futurecustomer/internal/config"
	"futurecustomer/internal/model"
	"futurecustomer/internal/repository"
	"futurecustomer/internal/simulation"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	seedFile     string
	seedGenerate int
	seedDrop     bool
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the respondent dataset agents are sampled from",
	Long:  "seed writes respondents into the simulator's MongoDB, from a YAML file or generated synthetically.",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	rootCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML dataset to load (see configs/respondents.example.yaml)")
	rootCmd.Flags().IntVarP(&seedGenerate, "generate", "g", 0, "generate N synthetic respondents instead of reading a file")
	rootCmd.Flags().BoolVar(&seedDrop, "drop", false, "drop the existing respondents collection first")
	rootCmd.MarkFlagsMutuallyExclusive("file", "generate")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	respondents, err := loadRespondents()
	if err != nil {
		return err
	}

	cfg, err := config.LoadSimulator()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer client.Disconnect(context.Background())

	repo := repository.NewRespondentRepo(client.Database(cfg.MongoDB))
	if seedDrop {
		if err := repo.Drop(ctx); err != nil {
			return fmt.Errorf("drop respondents: %w", err)
		}
		fmt.Println("  dropped respondents")
	}

	n, err := repo.InsertMany(ctx, respondents)
	if err != nil {
		return fmt.Errorf("insert respondents: %w", err)
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count respondents: %w", err)
	}
	fmt.Printf("  inserted %d respondents (%d in %s.respondents)\n", n, total, cfg.MongoDB)
	return nil
}

func loadRespondents() ([]model.Respondent, error) {
	switch {
	case seedGenerate > 0:
		return simulation.SyntheticDataset(seedGenerate), nil
	case seedFile != "":
		f, err := os.Open(seedFile)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		return simulation.LoadDataset(f)
	default:
		return nil, fmt.Errorf("one of --file or --generate is required")
	}
}
