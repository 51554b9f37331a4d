package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/afandal/storeadmin/config"
	"github.com/afandal/storeadmin/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the local disk and, when S3_BUCKET is set, the s3 disk.
func Connect(ctx context.Context) {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDisk = config.StorageDefault()
	disks["local"] = NewLocalDisk(config.StorageLocalRoot())

	if config.StorageS3Bucket() == "" {
		return
	}
	d, err := newS3Disk(ctx)
	if err != nil {
		logger.Warn("storage: s3 disk disabled", "error", err)
		return
	}
	disks["s3"] = d
}

// Use returns the named disk.
func Use(name string) (Disk, error) {
	managerMu.RLock()
	d, ok := disks[name]
	managerMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// RegisterDisk plugs in a Disk implementation under name.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}

// Resolve splits ref into its disk and path. Only "s3:" and "local:"
// prefixes name a disk; anything else, Windows drive letters included,
// is a path on the default disk.
func Resolve(ref string) (Disk, string, error) {
	name, p, found := strings.Cut(ref, ":")
	if !found || (name != "s3" && name != "local") {
		managerMu.RLock()
		name = defaultDisk
		managerMu.RUnlock()
		p = ref
	}
	d, err := Use(name)
	if err != nil {
		return nil, "", err
	}
	return d, p, nil
}

// Open resolves ref and returns the file stream and its base name.
func Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	d, p, err := Resolve(ref)
	if err != nil {
		return nil, "", err
	}
	rc, err := d.GetStream(ctx, p)
	if err != nil {
		return nil, "", err
	}
	return rc, path.Base(strings.ReplaceAll(p, "\\", "/")), nil
}
