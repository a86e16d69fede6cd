package main

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/fanyang89/pca/v1"
)

var cmd = &cli.Command{
	Name:  "pcactl",
	Usage: "Fit and apply principal component analysis to tabular datasets",
	Commands: []*cli.Command{
		fitCmd,
		projectCmd,
		compareCmd,
	},
}

var trimSpace = cli.StringConfig{TrimSpace: true}

// loadDataset reads the observation matrix either from a DuckDB query or
// from the CSV file named by the input argument.
func loadDataset(ctx context.Context, command *cli.Command) (*pca.Dataset, error) {
	if query := command.String("query"); query != "" {
		db, err := pca.OpenDuckDB(command.String("dsn"))
		if err != nil {
			return nil, err
		}
		defer func() { _ = db.Close() }()
		return pca.QueryMatrix(ctx, db, query)
	}

	path := command.StringArg("input")
	if path == "" {
		return nil, errors.New("input is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return pca.LoadCSV(f)
}

func main() {
	_ = godotenv.Load(".env")

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Caller().Stack().Logger()

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Unexpected error")
	}
}
