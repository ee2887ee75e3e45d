package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"evroute/config"
	"evroute/internal/infra/instance"
	"evroute/internal/infra/matrix/osrm"
	"evroute/internal/usecase"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

type matrixOptions struct {
	input   string
	output  string
	baseURL string
	profile string
}

// runMatrix fetches road distances for every node and writes the instance
// back as JSON with distance_matrix and travel_time_matrix set.
func runMatrix(ctx context.Context, w io.Writer, opts matrixOptions) error {
	doc, err := instance.ReadFile(opts.input)
	if err != nil {
		return err
	}

	inst, _, err := instance.Decode(doc)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client, err := osrm.NewClient(config.OSRMConfig{BaseURL: opts.baseURL, Profile: opts.profile}, logger)
	if err != nil {
		return err
	}

	points := make([]orb.Point, len(inst.Nodes))
	for i := range inst.Nodes {
		points[i] = inst.Nodes[i].Point()
	}

	table, err := client.Table(ctx, points)
	if err != nil {
		return err
	}

	doc.SetMatrix(usecase.FieldDistanceMatrix, table.Distances)
	if table.Durations != nil {
		doc.SetMatrix(usecase.FieldTravelTimeMatrix, table.Durations)
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode instance")
	}
	b = append(b, '\n')

	if opts.output == "" {
		_, err := w.Write(b)

		return errors.Wrap(err, "failed to write instance")
	}

	if err := os.WriteFile(opts.output, b, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", opts.output)
	}
	fmt.Fprintf(w, "Wrote %d x %d matrix to %s\n", len(points), len(points), opts.output)

	return nil
}
