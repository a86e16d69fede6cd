package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/floats"

	"github.com/fanyang89/pca/v1"
)

var fitCmd = &cli.Command{
	Name:  "fit",
	Usage: "Fit a PCA model and report per-component explained variance",
	Arguments: []cli.Argument{
		&cli.StringArg{Name: "input", Config: trimSpace},
	},
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "components",
			Aliases: []string{"k"},
			Value:   2,
		},
		&cli.StringFlag{
			Name:    "solver",
			Value:   "svd",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PCA_SOLVER")),
		},
		&cli.StringFlag{
			Name:    "dsn",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PCA_DSN")),
		},
		&cli.StringFlag{Name: "query", Config: trimSpace},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		solver, err := pca.ParseSolver(command.String("solver"))
		if err != nil {
			return err
		}

		ds, err := loadDataset(ctx, command)
		if err != nil {
			return err
		}
		n, d := ds.X.Dims()
		log.Info().Int("rows", n).Int("features", d).Stringer("solver", solver).Msg("Dataset loaded")

		p := pca.New(command.Int("components"), solver)
		err = p.Fit(ds.X)
		if err != nil {
			return err
		}

		ratio, err := p.ExplainedVarianceRatio()
		if err != nil {
			return err
		}

		variances := p.Variances()
		total := floats.Sum(variances)

		tw := table.NewWriter()
		tw.AppendHeader(table.Row{"Component", "Variance", "Ratio", "Cumulative"})
		cumulative := 0.0
		for i, v := range variances {
			ratio := v / total
			cumulative += ratio
			tw.AppendRow(table.Row{
				fmt.Sprintf("pc%d", i+1),
				fmt.Sprintf("%.6g", v),
				fmt.Sprintf("%.4f", ratio),
				fmt.Sprintf("%.4f", cumulative),
			})
		}
		fmt.Println(tw.Render())

		fmt.Printf("Explained variance ratio at k=%d: %.4f\n", p.K, ratio)
		return nil
	},
}
