package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/gangland/server/gangland/cache"
	"github.com/gangland/server/internal/domain/tables"
)

type SpacesConfig struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	Endpoint string `toml:"endpoint"`
	// TablesKey is the object holding the balance tables TOML document.
	TablesKey string `toml:"tables_key"`
}

func (c SpacesConfig) Enabled() bool {
	return c.Bucket != "" && c.TablesKey != ""
}

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// SpacesTables serves balance tables stored in a Spaces (S3 compatible)
// bucket. The decoded tables are cached; a failed refresh keeps serving the
// last good copy, and a missing object means the built-in defaults.
type SpacesTables struct {
	client objectGetter
	bucket string
	key    string
	cache  *cache.TTL[*tables.Tables]
}

func NewSpacesClient(ctx context.Context, cfg SpacesConfig) (*s3.Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.Region)
	}
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

func NewSpacesTables(client objectGetter, bucket, key string, c *cache.TTL[*tables.Tables]) *SpacesTables {
	return &SpacesTables{
		client: client,
		bucket: bucket,
		key:    strings.TrimPrefix(key, "/"),
		cache:  c,
	}
}

func (s *SpacesTables) Tables(ctx context.Context) (*tables.Tables, error) {
	if t, ok := s.cache.Get(s.key); ok {
		return t, nil
	}
	t, err := s.fetch(ctx)
	if err != nil {
		if stale, ok := s.cache.Stale(s.key); ok {
			slog.Warn("Failed to refresh game tables, serving cached copy",
				slog.String("type", "sys"),
				slog.String("key", s.key),
				slog.String("error", err.Error()))
			s.cache.Add(s.key, stale)
			return stale, nil
		}
		return nil, err
	}
	s.cache.Add(s.key, t)
	return t, nil
}

func (s *SpacesTables) fetch(ctx context.Context) (*tables.Tables, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		slog.Info("No game tables in bucket, using defaults",
			slog.String("type", "sys"),
			slog.String("key", s.key))
		return tables.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", s.key, err)
	}
	defer out.Body.Close()

	t, err := tables.Decode(out.Body)
	if err != nil {
		return nil, fmt.Errorf("invalid tables document %s: %w", s.key, err)
	}
	slog.Info("Game tables loaded",
		slog.String("type", "sys"),
		slog.String("key", s.key),
		slog.Int("crimes", len(t.Crimes)),
		slog.Int("cars", len(t.Cars)))
	return t, nil
}
