package source

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/rileyhilliard/freqmon/internal/config"
	"github.com/rileyhilliard/freqmon/internal/logger"
	"github.com/rileyhilliard/freqmon/internal/telemetry"
)

// ErrNotFound is returned by ObjectStore.Get for a missing key.
var ErrNotFound = stderrors.New("object not found")

// ObjectStore is the slice of an S3 client the remote source needs.
type ObjectStore interface {
	// Get returns an object's bytes, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns the keys directly under prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Describe names the bucket for display, e.g. "s3://bucket@endpoint".
	Describe() string
}

// Remote reads device files from an object store under a key prefix.
type Remote struct {
	store  ObjectStore
	prefix string
	log    logger.Logger
}

var _ Source = (*Remote)(nil)

// NewRemote creates a Remote source. prefix is normalized to end in "/".
func NewRemote(store ObjectStore, prefix string, log logger.Logger) *Remote {
	return &Remote{store: store, prefix: config.NormalizePrefix(prefix), log: log}
}

func (r *Remote) Mode() config.SourceMode { return config.ModeRemote }
func (r *Remote) Close() error            { return nil }

func (r *Remote) Location() string {
	return fmt.Sprintf("%s/%s", r.store.Describe(), r.prefix)
}

func (r *Remote) Devices(ctx context.Context) ([]telemetry.DeviceID, error) {
	keys, err := r.store.List(ctx, r.prefix)
	if err != nil {
		return nil, sourceError(err, "Can't list objects under "+r.Location())
	}
	return telemetry.DeviceIDsFromNames(keys)
}

// Load fetches the sample object, then the bounds object. Any failure to
// fetch bounds (missing or otherwise) means no bounds; it is only logged.
func (r *Remote) Load(ctx context.Context, id telemetry.DeviceID) (*telemetry.Window, *telemetry.Bounds, error) {
	sampleKey := r.prefix + telemetry.DataFileName(id)
	data, err := r.store.Get(ctx, sampleKey)
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, sourceError(err, "Can't fetch "+sampleKey)
	}
	w, err := decodeWindow(sampleKey, data)
	if err != nil {
		return nil, nil, err
	}

	boundsKey := r.prefix + telemetry.BoundsFileName(id)
	data, err = r.store.Get(ctx, boundsKey)
	if err != nil {
		r.log.Debug("no bounds for device %d (%s): %v", id, boundsKey, err)
		return w, nil, nil
	}
	b, err := decodeBounds(boundsKey, data)
	if err != nil {
		return nil, nil, err
	}
	return w, b, nil
}
