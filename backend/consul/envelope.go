package consul

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/xirelogy/magpie-s3-filesystem/backend"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const encodingZstd = "zstd"

// envelope is the JSON value stored for each object.
type envelope struct {
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
	ETag        string `json:"etag"`
	ModifyTime  int64  `json:"modify_time"`
	Encoding    string `json:"encoding,omitempty"`
	Data        []byte `json:"data"`
}

func (cb *ConsulBackend) encode(data []byte, opts backend.PutOptions) (*envelope, []byte, error) {
	env := &envelope{
		ContentType: opts.ContentType,
		Size:        int64(len(data)),
		ETag:        backend.ComputeETag(data),
		ModifyTime:  time.Now().UnixNano(),
		Data:        data,
	}

	if len(data) > compressThreshold {
		env.Encoding = encodingZstd
		env.Data = cb.encoder.EncodeAll(data, nil)
	}

	value, err := json.Marshal(env)
	if err != nil {
		return nil, nil, err
	}

	return env, value, nil
}

func (cb *ConsulBackend) decode(value []byte) (*envelope, error) {
	env := &envelope{}
	if err := json.Unmarshal(value, env); err != nil {
		return nil, err
	}

	switch env.Encoding {
	case "":
	case encodingZstd:
		data, err := cb.decoder.DecodeAll(env.Data, nil)
		if err != nil {
			return nil, err
		}
		env.Data = data
	default:
		return nil, fmt.Errorf("unknown encoding '%s'", env.Encoding)
	}

	return env, nil
}

func (env *envelope) info(key string) *backend.ObjectInfo {
	return &backend.ObjectInfo{
		Key:         key,
		Size:        env.Size,
		ContentType: env.ContentType,
		ETag:        env.ETag,
		ModifyTime:  time.Unix(0, env.ModifyTime),
	}
}
