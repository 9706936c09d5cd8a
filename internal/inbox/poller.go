// Package inbox watches an S3 drop folder for export files.
//
// Operators without dashboard access push exports into the bucket; the
// poller classifies each file by name, runs the matching import, and moves
// the object out of the way so it is processed exactly once.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pienissimo/opsdash/internal/config"
	"github.com/pienissimo/opsdash/internal/domain"
	"github.com/pienissimo/opsdash/internal/ingest"
	"github.com/pienissimo/opsdash/internal/pkg/distlock"
	"github.com/pienissimo/opsdash/internal/pkg/logger"
)

// ObjectStore is the slice of the S3 API the poller uses, extracted so tests
// can fake it.
type ObjectStore interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, opts ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ImportRunner runs one import; satisfied by *ingest.Importer.
type ImportRunner interface {
	Import(ctx context.Context, buf []byte, typ domain.ImportType, dept domain.Department) (*ingest.Result, error)
}

const (
	processedPrefix = "processed/"
	failedPrefix    = "failed/"
)

// Poller drains the drop folder on an interval.
type Poller struct {
	cfg      config.InboxConfig
	client   ObjectStore
	importer ImportRunner
	log      *logger.Logger

	// OnImport runs after each successful import, used to drop cached
	// dashboards.
	OnImport func(ctx context.Context)

	// Lock, when set, ensures only one replica drains the folder per cycle.
	Lock distlock.DistLock
}

// New builds a poller against real S3.
func New(ctx context.Context, cfg config.InboxConfig, importer ImportRunner) (*Poller, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.AWSProfile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithClient(cfg, s3.NewFromConfig(awsCfg), importer), nil
}

// NewWithClient wires an explicit client, used by tests.
func NewWithClient(cfg config.InboxConfig, client ObjectStore, importer ImportRunner) *Poller {
	return &Poller{
		cfg:      cfg,
		client:   client,
		importer: importer,
		log:      logger.Component("inbox"),
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	interval := time.Duration(p.cfg.IntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := p.PollOnce(ctx); err != nil {
		p.log.Error("inbox poll failed", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.PollOnce(ctx); err != nil {
				p.log.Error("inbox poll failed", "error", err)
			}
		}
	}
}

// PollOnce lists the drop folder and processes every recognizable file.
// Per-file failures do not stop the batch.
func (p *Poller) PollOnce(ctx context.Context) error {
	if p.Lock != nil {
		ok, err := p.Lock.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("acquire inbox lock: %w", err)
		}
		if !ok {
			p.log.Debug("inbox locked by another replica, skipping cycle")
			return nil
		}
		defer p.Lock.Release(ctx)
	}

	out, err := p.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.cfg.S3Bucket),
		Prefix: aws.String(p.cfg.Prefix),
	})
	if err != nil {
		return fmt.Errorf("list inbox: %w", err)
	}

	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		base := path.Base(key)
		rel := strings.TrimPrefix(key, p.cfg.Prefix)
		if strings.HasPrefix(rel, processedPrefix) || strings.HasPrefix(rel, failedPrefix) {
			continue
		}

		typ, dept, ok := ClassifyKey(base)
		if !ok {
			p.log.Warn("unrecognized inbox file", "key", key)
			continue
		}

		if err := p.processObject(ctx, key, typ, dept); err != nil {
			p.log.Error("inbox file failed", "key", key, "error", err)
		}
	}
	return nil
}

func (p *Poller) processObject(ctx context.Context, key string, typ domain.ImportType, dept domain.Department) error {
	obj, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get object: %w", err)
	}
	buf, err := io.ReadAll(obj.Body)
	obj.Body.Close()
	if err != nil {
		return fmt.Errorf("read object: %w", err)
	}

	res, importErr := p.importer.Import(ctx, buf, typ, dept)

	var reject *ingest.RejectError
	switch {
	case importErr == nil:
		p.log.Info("inbox import done", "key", key, "type", string(typ),
			"accepted", res.Accepted, "skipped", res.TotalRows-res.Accepted)
		if err := p.moveObject(ctx, key, processedPrefix); err != nil {
			return err
		}
		if p.OnImport != nil {
			p.OnImport(ctx)
		}
		return nil

	case errors.As(importErr, &reject),
		errors.Is(importErr, ingest.ErrHeaderNotFound),
		errors.Is(importErr, ingest.ErrEmptyFile),
		errors.Is(importErr, ingest.ErrNoValidRows),
		errors.Is(importErr, ingest.ErrLegacyWorkbook):
		// The file itself is bad; retrying cannot fix it. Park it so the
		// poller does not spin on it forever.
		p.log.Warn("inbox file rejected", "key", key, "reason", importErr.Error())
		return p.moveObject(ctx, key, failedPrefix)

	default:
		// Transient (storage down, context cancelled): leave the object in
		// place for the next tick.
		return importErr
	}
}

// moveObject is S3's rename: copy then delete.
func (p *Poller) moveObject(ctx context.Context, key, destPrefix string) error {
	dest := p.cfg.Prefix + destPrefix + path.Base(key)
	_, err := p.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(p.cfg.S3Bucket),
		CopySource: aws.String(p.cfg.S3Bucket + "/" + key),
		Key:        aws.String(dest),
	})
	if err != nil {
		return fmt.Errorf("copy to %s: %w", dest, err)
	}
	_, err = p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.cfg.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ClassifyKey maps a filename to an import type the way operators actually
// name their exports. Development overview files must say so explicitly;
// anything ticket-ish defaults to the support desk.
func ClassifyKey(name string) (domain.ImportType, domain.Department, bool) {
	lower := strings.ToLower(name)
	switch ext := path.Ext(lower); ext {
	case ".csv", ".xlsx", ".xls":
	default:
		return "", "", false
	}

	switch {
	case strings.Contains(lower, "formazione") || strings.Contains(lower, "training") || strings.Contains(lower, "nota"):
		return domain.ImportTraining, "", true
	case strings.Contains(lower, "sviluppo") || strings.Contains(lower, "development"):
		return domain.ImportTickets, domain.DeptDevelopment, true
	case strings.Contains(lower, "overview") || strings.Contains(lower, "ticket") || strings.Contains(lower, "assistenza"):
		return domain.ImportTickets, domain.DeptSupport, true
	case strings.Contains(lower, "chat") || strings.Contains(lower, "conversazion"):
		return domain.ImportChat, "", true
	}
	return "", "", false
}
