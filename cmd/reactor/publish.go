package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/snapshot"
)

func publishCmd() *cobra.Command {
	var (
		templatePath string
		statePath    string
		bucket       string
		key          string
		title        string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Render a template and upload it to S3",
		Long: `Render a template like 'reactor render' and upload the HTML to an
S3 bucket. Credentials come from the default AWS chain: environment,
shared config and profiles, SSO, or the instance role. The region, endpoint
and key prefix come from the snapshot section of reactor.json.

Examples:
  reactor publish --template page.html --bucket my-site --key index.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd.Context())
			if bucket == "" {
				bucket = cfg.Snapshot.Bucket
			}
			if bucket == "" {
				return errors.New("CLI001").
					WithDetail("no bucket given").
					WithSuggestion("Pass --bucket or set snapshot.bucket in reactor.json")
			}

			comp, err := loadTemplate(templatePath, statePath)
			if err != nil {
				return err
			}

			client, err := newS3Client(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			pub := snapshot.NewPublisher(client, bucket,
				snapshot.WithPrefix(cfg.Snapshot.Prefix),
				snapshot.WithTitle(title),
			)
			res, err := pub.Publish(cmd.Context(), key, comp, nil)
			if err != nil {
				return err
			}
			success("published s3://%s/%s (%d bytes)", res.Bucket, res.Key, res.Size)
			return nil
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file to render")
	cmd.Flags().StringVarP(&statePath, "state", "s", "", "JSON object used as the template's state")
	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Target bucket (default from reactor.json)")
	cmd.Flags().StringVarP(&key, "key", "k", "index.html", "Object key, below the configured prefix")
	cmd.Flags().StringVar(&title, "title", "", "Wrap the output in a full HTML document with this title")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

// newS3Client builds a client from the default AWS credential chain and the
// snapshot config. A configured endpoint switches to path-style addressing
// for S3-compatible stores.
func newS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Snapshot.Region))
	if err != nil {
		return nil, errors.New("CLI002").
			WithDetail("cannot load AWS configuration").
			WithSuggestion("Check AWS_PROFILE and the shared config files").
			Wrap(err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Snapshot.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Snapshot.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
