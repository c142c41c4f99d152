package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RMahshie/wigwag/internal/app"
	"github.com/RMahshie/wigwag/internal/storage"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload the local data directory to S3",
	Long: `Publish copies every file under DATA_ROOT to S3_BUCKET, creating the
bucket first when it does not exist. Keys are kept relative to DATA_ROOT, so
a server started with CATALOG_SOURCE=s3 resolves the same paths.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s3cfg := app.S3Config(cfg)
		if bucket, _ := cmd.Flags().GetString("bucket"); bucket != "" {
			s3cfg.Bucket = bucket
		}
		if prefix, _ := cmd.Flags().GetString("prefix"); prefix != "" {
			s3cfg.Prefix = prefix
		}

		if err := storage.EnsureBucket(ctx, s3cfg); err != nil {
			return err
		}
		dst, err := storage.NewS3Store(ctx, s3cfg)
		if err != nil {
			return err
		}

		n, err := storage.Mirror(ctx, storage.NewFileStore(cfg.Data.Root), dst)
		if err != nil {
			return fmt.Errorf("published %d files before failing: %w", n, err)
		}
		fmt.Fprintf(os.Stderr, "published %d files to s3://%s\n", n, s3cfg.Bucket)
		return nil
	},
}

func init() {
	publishCmd.Flags().String("bucket", "", "destination bucket, overrides S3_BUCKET")
	publishCmd.Flags().String("prefix", "", "key prefix inside the bucket")

	rootCmd.AddCommand(publishCmd)
}
