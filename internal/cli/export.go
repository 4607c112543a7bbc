package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/cloudwriter"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/export"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		out    string
		bucket string
		key    string
		term   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of the catalog to a file, stdout or S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := time.Now()

			rt, err := a.buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			foods, err := rt.svc.ListFoods(ctx, term)
			if err != nil {
				return fmt.Errorf("failed to load foods: %w", err)
			}

			if bucket == "" {
				bucket = a.cfg.Export.Bucket
			}

			var (
				w    io.WriteCloser
				dest string
			)
			switch {
			case out == "-" || (out == "" && bucket == ""):
				w, dest = nopCloser{cmd.OutOrStdout()}, "stdout"
			case out != "":
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				w, dest = f, out
			default:
				if key == "" {
					key = export.ObjectKey(now)
				}
				factory, err := cloudwriter.NewS3WriterFactory(ctx, a.cfg.Export.Region)
				if err != nil {
					return err
				}
				s3w, err := factory.NewWriterContext(ctx, bucket, key)
				if err != nil {
					return err
				}
				w, dest = s3w, fmt.Sprintf("s3://%s/%s", bucket, key)
			}

			if err := export.WriteSnapshot(w, foods, now); err != nil {
				_ = w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}

			a.logger.Info("catalog exported", "destination", dest, "count", len(foods))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket (defaults to export.bucket)")
	cmd.Flags().StringVar(&key, "key", "", "S3 object key (defaults to a timestamped name)")
	cmd.Flags().StringVarP(&term, "search", "s", "", "export only meals matching a name")
	return cmd
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
