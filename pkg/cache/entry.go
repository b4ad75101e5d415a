package cache

import (
	"errors"
	"strings"

	"github.com/thebartekbanach/webimage/pkg/codec"
)

// Tier selects storage tiers of the cache.
type Tier uint8

const (
	TierMemory Tier = 1 << iota
	TierDisk

	TierNone Tier = 0
	TierAll       = TierMemory | TierDisk
)

func (t Tier) Has(other Tier) bool {
	return t&other != 0
}

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierMemory:
		return "memory"
	case TierDisk:
		return "disk"
	}

	names := []string{}
	if t.Has(TierMemory) {
		names = append(names, "memory")
	}
	if t.Has(TierDisk) {
		names = append(names, "disk")
	}
	return strings.Join(names, "+")
}

// EncodingHint is persisted next to the stored bytes.
type EncodingHint struct {
	Animated bool
	HasAlpha bool
	Scale    float64
}

// Entry is a cached image. Image, Data or both are set. Source is the image
// URL the entry was produced from, empty when unknown.
type Entry struct {
	Key    string
	Source string
	Image  *codec.Image
	Data   []byte
	Hint   EncodingHint
	Cost   int64
}

func NewEntry(key string, image *codec.Image, data []byte) Entry {
	entry := Entry{
		Key:   key,
		Image: image,
		Data:  data,
		Hint:  EncodingHint{Scale: 1},
	}

	if image != nil {
		entry.Hint = EncodingHint{
			Animated: image.IsAnimated(),
			HasAlpha: image.HasAlpha,
			Scale:    image.Scale,
		}
	} else if data != nil {
		entry.Hint.Scale = codec.ScaleFromPath(key)
	}

	if entry.Hint.Scale <= 0 {
		entry.Hint.Scale = 1
	}

	entry.Cost = entry.computeCost()
	return entry
}

func (e Entry) IsEmpty() bool {
	return e.Image == nil && len(e.Data) == 0
}

func (e Entry) computeCost() int64 {
	return int64(len(e.Data)) + e.Image.Cost()
}

var (
	ErrEmptyEntry = errors.New("cache entry has neither image nor data")
	ErrEmptyKey   = errors.New("cache key is empty")
)
