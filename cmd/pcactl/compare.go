package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	golearnpca "github.com/sjwhitworth/golearn/pca"
	"github.com/urfave/cli/v3"

	"github.com/fanyang89/pca/v1"
)

// Columns from the two implementations may come out sign-flipped: a
// principal direction and its negation span the same axis.
var compareCmd = &cli.Command{
	Name:  "compare",
	Usage: "Project a dataset with this library and with the golearn reference PCA, side by side",
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
		&cli.IntFlag{
			Name:  "limit",
			Value: 10,
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		solver, err := pca.ParseSolver(command.String("solver"))
		if err != nil {
			return err
		}
		k := command.Int("components")

		ds, err := loadDataset(ctx, command)
		if err != nil {
			return err
		}

		p := pca.New(k, solver)
		ours, err := p.FitTransform(ds.X)
		if err != nil {
			return err
		}
		ratio, err := p.ExplainedVarianceRatio()
		if err != nil {
			return err
		}

		ref := golearnpca.NewPCA(k)
		ref.Fit(ds.X)
		theirs := ref.Transform(ds.X)

		n, cols := ours.Dims()
		if k > cols {
			k = cols
		}
		_, refCols := theirs.Dims()
		if k > refCols {
			k = refCols
		}
		limit := command.Int("limit")
		if n < limit {
			limit = n
		}

		header := table.Row{"Row"}
		for j := 0; j < k; j++ {
			header = append(header, fmt.Sprintf("pc%d", j+1))
		}
		for j := 0; j < k; j++ {
			header = append(header, fmt.Sprintf("ref pc%d", j+1))
		}

		tw := table.NewWriter()
		tw.AppendHeader(header)
		for i := 0; i < limit; i++ {
			row := table.Row{i}
			for j := 0; j < k; j++ {
				row = append(row, fmt.Sprintf("%.6f", ours.At(i, j)))
			}
			for j := 0; j < k; j++ {
				row = append(row, fmt.Sprintf("%.6f", theirs.At(i, j)))
			}
			tw.AppendRow(row)
		}
		fmt.Println(tw.Render())

		log.Info().
			Float64("explained_variance_ratio", ratio).
			Int("k", k).
			Msg("Columns agreeing up to sign indicate matching principal directions")
		return nil
	},
}
