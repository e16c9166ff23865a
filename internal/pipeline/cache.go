package pipeline

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Identity is what a pipeline cache blob must have been produced by to be
// reused.
type Identity struct {
	VendorID  uint32
	DeviceID  uint32
	CacheUUID uuid.UUID
}

var ErrStaleCache = errors.New("pipeline cache was produced by a different driver")

// cacheHeaderSize covers length, version, vendor, device and the UUID.
const cacheHeaderSize = 16 + 16

// ValidateCacheHeader checks the header of a cache blob against the device
// that will consume it.
//
//	offset 0   header length
//	offset 4   header version
//	offset 8   vendor ID
//	offset 12  device ID
//	offset 16  pipeline cache UUID
func ValidateCacheHeader(data []byte, want Identity) error {
	if len(data) < cacheHeaderSize {
		return errors.Wrapf(ErrStaleCache, "%d bytes is shorter than the header", len(data))
	}

	var header struct {
		Length   uint32
		Version  core1_0.PipelineCacheHeaderVersion
		VendorID uint32
		DeviceID uint32
		UUID     uuid.UUID
	}
	if err := binary.Read(bytes.NewReader(data), common.ByteOrder, &header); err != nil {
		return errors.Wrap(err, "pipeline cache header")
	}

	switch {
	case header.Length < cacheHeaderSize || int(header.Length) > len(data):
		return errors.Wrapf(ErrStaleCache, "bad header length %d", header.Length)
	case header.Version != core1_0.PipelineCacheHeaderVersionOne:
		return errors.Wrapf(ErrStaleCache, "unsupported header version %d", header.Version)
	case header.VendorID != want.VendorID:
		return errors.Wrapf(ErrStaleCache, "vendor %#x, driver expects %#x", header.VendorID, want.VendorID)
	case header.DeviceID != want.DeviceID:
		return errors.Wrapf(ErrStaleCache, "device %#x, driver expects %#x", header.DeviceID, want.DeviceID)
	case header.UUID != want.CacheUUID:
		return errors.Wrapf(ErrStaleCache, "uuid %s, driver expects %s", header.UUID, want.CacheUUID)
	}
	return nil
}
