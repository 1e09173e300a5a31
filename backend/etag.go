package backend

import (
	"crypto/md5"
	"encoding/hex"
)

// ComputeETag returns the hex MD5 digest S3 uses as ETag for single-part uploads.
func ComputeETag(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
