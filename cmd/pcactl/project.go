package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/sourcegraph/conc/pool"
	"github.com/urfave/cli/v3"

	"github.com/fanyang89/pca/v1"
)

const projectedSuffix = ".projected.csv"

var projectCmd = &cli.Command{
	Name:  "project",
	Usage: "Fit on a training dataset, then project other datasets onto the top components",
	Arguments: []cli.Argument{
		&cli.StringArg{Name: "train", Config: trimSpace},
		&cli.StringArg{Name: "path", Config: trimSpace},
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
			Name:    "glob",
			Aliases: []string{"g"},
			Value:   "*.csv",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"j"},
			Value:   3,
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		trainPath := command.StringArg("train")
		if trainPath == "" {
			return errors.New("train is required")
		}
		path := command.StringArg("path")
		if path == "" {
			return errors.New("path is required")
		}

		solver, err := pca.ParseSolver(command.String("solver"))
		if err != nil {
			return err
		}

		f, err := os.Open(trainPath)
		if err != nil {
			return err
		}
		train, err := pca.LoadCSV(f)
		_ = f.Close()
		if err != nil {
			return err
		}

		p := pca.New(command.Int("components"), solver)
		err = p.Fit(train.X)
		if err != nil {
			return err
		}
		ratio, err := p.ExplainedVarianceRatio()
		if err != nil {
			return err
		}
		log.Info().Float64("explained_variance_ratio", ratio).Int("k", p.K).Msg("Model fitted")

		files, err := collectInputs(path, command.String("glob"))
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return errors.Newf("no files under %s match %q", path, command.String("glob"))
		}

		bar := progressbar.Default(int64(len(files)))
		bar.Describe("Projecting datasets")
		defer func() { _ = bar.Finish() }()

		wp := pool.New().WithMaxGoroutines(command.Int("workers"))
		for _, file := range files {
			wp.Go(func() {
				defer func() { _ = bar.Add(1) }()
				err := projectFile(p, file, command.Int("components"))
				if err != nil {
					log.Error().Err(err).Str("path", file).Msg("Projection failed")
					return
				}
			})
		}
		wp.Wait()
		return nil
	},
}

func collectInputs(path string, pattern string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !g.Match(d.Name()) || strings.HasSuffix(path, projectedSuffix) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func projectFile(p *pca.PCA, path string, k int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	ds, err := pca.LoadCSV(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	projected, err := p.Transform(ds.X)
	if err != nil {
		return err
	}
	n, cols := projected.Dims()
	if k > cols {
		k = cols
	}

	out, err := os.Create(strings.TrimSuffix(path, ".csv") + projectedSuffix)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	w := csv.NewWriter(out)
	record := make([]string, k)
	for j := 0; j < k; j++ {
		record[j] = fmt.Sprintf("pc%d", j+1)
	}
	err = w.Write(record)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			record[j] = strconv.FormatFloat(projected.At(i, j), 'g', -1, 64)
		}
		err = w.Write(record)
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
