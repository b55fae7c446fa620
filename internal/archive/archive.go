// Package archive keeps a JSON copy of every deleted recipe, with its
// steps, images and ingredients, in a gocloud.dev blob bucket (S3, GCS,
// Azure, local files or memory)
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/kode4food/larder/pkg/api"
	"github.com/kode4food/larder/pkg/log"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

type (
	// Snapshot is the archived form of a deleted recipe
	Snapshot struct {
		Deleted     time.Time         `json:"deleted"`
		Recipe      *api.Recipe       `json:"recipe"`
		DeletedBy   string            `json:"deleted_by"`
		Steps       []*api.Step       `json:"steps"`
		Images      []*api.Image      `json:"images"`
		Ingredients []*api.Ingredient `json:"ingredients"`
	}

	// Archive writes snapshots to a bucket
	Archive struct {
		bucket *blob.Bucket
		prefix string
	}
)

const orphanedAuthor = "_orphaned"

var (
	ErrSnapshotRequired = errors.New("snapshot is required")
	ErrNotFound         = errors.New("archived recipe not found")
)

// Open connects to the bucket at bucketURL, e.g. "s3://bucket",
// "file:///var/lib/larder" or "mem://"
func Open(ctx context.Context, bucketURL, prefix string) (*Archive, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open archive bucket: %w", err)
	}
	return New(bucket, prefix), nil
}

// New wraps an already opened bucket
func New(bucket *blob.Bucket, prefix string) *Archive {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Archive{bucket: bucket, prefix: prefix}
}

// Put stores a snapshot and returns its key
func (a *Archive) Put(ctx context.Context, snap *Snapshot) (string, error) {
	if snap == nil || snap.Recipe == nil {
		return "", ErrSnapshotRequired
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}

	key := a.keyFor(snap.Recipe.Author, snap.Recipe.Slug, snap.Recipe.ID)
	opts := &blob.WriterOptions{ContentType: "application/json"}
	if err := a.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return "", err
	}
	slog.Info("Recipe archived",
		log.RecipeID(snap.Recipe.ID),
		log.Username(snap.DeletedBy),
		slog.String("key", key))
	return key, nil
}

// Get reads back the snapshot of a deleted recipe
func (a *Archive) Get(
	ctx context.Context, author, slug string, id api.RecipeID,
) (*Snapshot, error) {
	data, err := a.bucket.ReadAll(ctx, a.keyFor(author, slug, id))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, author, slug)
		}
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Keys lists the archived snapshot keys of an author
func (a *Archive) Keys(ctx context.Context, author string) ([]string, error) {
	iter := a.bucket.List(&blob.ListOptions{
		Prefix: a.prefix + authorDir(author) + "/",
	})
	var res []string
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, obj.Key)
	}
}

// Close releases the bucket
func (a *Archive) Close() error {
	return a.bucket.Close()
}

func (a *Archive) keyFor(author, slug string, id api.RecipeID) string {
	return fmt.Sprintf("%s%s/%s-%s.json", a.prefix, authorDir(author), slug, id)
}

func authorDir(author string) string {
	if author == "" {
		return orphanedAuthor
	}
	return author
}
