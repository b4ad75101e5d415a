package imageerrors

import (
	"context"
	stderrors "errors"

	"github.com/jmgilman/go/errors"
)

const (
	CodeNetwork          = errors.CodeNetwork
	CodeTimeout          = errors.CodeTimeout
	CodeInvalidInput     = errors.CodeInvalidInput
	CodeDecode           errors.ErrorCode = "DECODE_FAILED"
	CodeCacheIO          errors.ErrorCode = "CACHE_IO_ERROR"
	CodePreviouslyFailed errors.ErrorCode = "PREVIOUSLY_FAILED"
)

func Network(err error, url string) error {
	return errors.WrapWithContext(err, CodeNetwork, "fetching image failed", map[string]interface{}{"url": url})
}

func Timeout(err error, url string) error {
	return errors.WrapWithContext(err, CodeTimeout, "fetching image timed out", map[string]interface{}{"url": url})
}

func Decode(err error) error {
	return errors.Wrap(err, CodeDecode, "decoding image failed")
}

func CacheIO(err error, key string) error {
	return errors.WrapWithContext(err, CodeCacheIO, "cache storage failed", map[string]interface{}{"key": key})
}

func InvalidInput(message string) error {
	return errors.New(CodeInvalidInput, message)
}

// PreviouslyFailed reports a request for a URL that is on the failure blacklist.
func PreviouslyFailed(url string) error {
	return errors.WithContext(errors.New(CodePreviouslyFailed, "url failed before and is blacklisted"), "url", url)
}

// FromFetch classifies an error returned while the network phase was running.
func FromFetch(err error, url string) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return Timeout(err, url)
	}

	if errors.GetCode(err) != errors.CodeUnknown {
		return err
	}

	return Network(err, url)
}

func Code(err error) errors.ErrorCode {
	return errors.GetCode(err)
}

func IsNetwork(err error) bool {
	return errors.GetCode(err) == CodeNetwork
}

func IsTimeout(err error) bool {
	return errors.GetCode(err) == CodeTimeout
}

func IsDecode(err error) bool {
	return errors.GetCode(err) == CodeDecode
}

func IsCacheIO(err error) bool {
	return errors.GetCode(err) == CodeCacheIO
}

func IsPreviouslyFailed(err error) bool {
	return errors.GetCode(err) == CodePreviouslyFailed
}

func IsInvalidInput(err error) bool {
	return errors.GetCode(err) == CodeInvalidInput
}

// Blacklistable reports whether a failure should put its URL on the failure blacklist.
// Timeouts are transient and never blacklisted.
func Blacklistable(err error) bool {
	return IsNetwork(err) || IsDecode(err)
}
