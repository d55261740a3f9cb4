package morpheme

import (
	"fmt"

	"github.com/pkg/errors"
)

type FormatErrorKind int

const (
	KindHeaderMismatch FormatErrorKind = iota + 1
	KindUnsupportedAnimationType
	KindUnsupportedIndexedRotation
	KindTruncatedChannelData
	KindSentinelNotFound
	KindBoneIndexOutOfRange
	KindFrameOutOfRange
	KindMissingSample
	KindBitWidthOutOfRange
)

func (k FormatErrorKind) String() string {
	switch k {
	case KindHeaderMismatch:
		return "header mismatch"
	case KindUnsupportedAnimationType:
		return "unsupported animation type"
	case KindUnsupportedIndexedRotation:
		return "unsupported indexed rotation"
	case KindTruncatedChannelData:
		return "truncated channel data"
	case KindSentinelNotFound:
		return "sentinel not found"
	case KindBoneIndexOutOfRange:
		return "bone index out of range"
	case KindFrameOutOfRange:
		return "frame out of range"
	case KindMissingSample:
		return "missing sample"
	case KindBitWidthOutOfRange:
		return "bit width out of range"
	default:
		return fmt.Sprintf("format error %d", int(k))
	}
}

// FormatError reports input that is not the expected Morpheme layout or
// uses an encoding branch this decoder does not implement.
type FormatError struct {
	Kind     FormatErrorKind
	Field    string
	Expected int64
	Actual   int64
}

func (e *FormatError) Error() string {
	switch e.Kind {
	case KindHeaderMismatch:
		return fmt.Sprintf("%v: %s is %d, expected %d", e.Kind, e.Field, e.Actual, e.Expected)
	case KindUnsupportedAnimationType:
		return fmt.Sprintf("%v: %s is %d, only %d is supported", e.Kind, e.Field, e.Actual, e.Expected)
	case KindUnsupportedIndexedRotation:
		return fmt.Sprintf("%v: %s has %d channels, indexed rotations are not supported", e.Kind, e.Field, e.Actual)
	case KindTruncatedChannelData:
		return fmt.Sprintf("%v: %s needs %d bits per frame, frame holds %d", e.Kind, e.Field, e.Actual, e.Expected)
	case KindSentinelNotFound:
		return fmt.Sprintf("%v: %s terminator not found before end of file", e.Kind, e.Field)
	case KindBoneIndexOutOfRange, KindFrameOutOfRange, KindBitWidthOutOfRange:
		return fmt.Sprintf("%v: %s is %d, limit %d", e.Kind, e.Field, e.Actual, e.Expected)
	case KindMissingSample:
		return fmt.Sprintf("%v: %s for bone %d at frame %d", e.Kind, e.Field, e.Actual, e.Expected)
	default:
		return fmt.Sprintf("%v: %s", e.Kind, e.Field)
	}
}

// Is matches any FormatError of the same kind, so the Err* values below work
// as sentinels with errors.Is.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	return ok && t.Kind == e.Kind
}

var (
	ErrHeaderMismatch             = &FormatError{Kind: KindHeaderMismatch}
	ErrUnsupportedAnimationType   = &FormatError{Kind: KindUnsupportedAnimationType}
	ErrUnsupportedIndexedRotation = &FormatError{Kind: KindUnsupportedIndexedRotation}
	ErrTruncatedChannelData       = &FormatError{Kind: KindTruncatedChannelData}
	ErrSentinelNotFound           = &FormatError{Kind: KindSentinelNotFound}
	ErrBoneIndexOutOfRange        = &FormatError{Kind: KindBoneIndexOutOfRange}
	ErrFrameOutOfRange            = &FormatError{Kind: KindFrameOutOfRange}
	ErrMissingSample              = &FormatError{Kind: KindMissingSample}
	ErrBitWidthOutOfRange         = &FormatError{Kind: KindBitWidthOutOfRange}
)

// EncodingError reports bone name bytes that do not decode as text.
type EncodingError struct {
	Bone int
	Raw  []byte
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("bone %d name %q is not valid text: %v", e.Bone, e.Raw, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

var ErrUnknownMirrorBone = errors.New("bone missing from mirror table")

func checkRange(field string, value, limit int) error {
	if value < 0 || value >= limit {
		return &FormatError{Kind: KindBoneIndexOutOfRange, Field: field, Expected: int64(limit), Actual: int64(value)}
	}
	return nil
}
