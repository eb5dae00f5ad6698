package errors

// CodecError is a specialized error type for record encode/decode failures,
// the on-disk-format analogue of StorageError and IndexError. It captures
// enough context to tell a crash-truncated WAL tail apart from a corrupted
// segment body.
type CodecError struct {
	*baseError

	// offset is the byte position within the stream where decoding failed.
	offset int64
	// bytesRead is how many bytes of the current record were read before
	// the failure, used to tell "clean EOF between records" apart from
	// "EOF midway through a record".
	bytesRead int
}

// NewCodecError creates a new codec-specific error with the provided context.
func NewCodecError(err error, code ErrorCode, msg string) *CodecError {
	return &CodecError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the CodecError type.
func (ce *CodecError) WithMessage(msg string) *CodecError {
	ce.baseError.WithMessage(msg)
	return ce
}

// WithCode sets the error code while preserving the CodecError type.
func (ce *CodecError) WithCode(code ErrorCode) *CodecError {
	ce.baseError.WithCode(code)
	return ce
}

// WithDetail adds contextual information while maintaining the CodecError type.
func (ce *CodecError) WithDetail(key string, value any) *CodecError {
	ce.baseError.WithDetail(key, value)
	return ce
}

// WithOffset records where in the stream decoding failed.
func (ce *CodecError) WithOffset(offset int64) *CodecError {
	ce.offset = offset
	return ce
}

// WithBytesRead records how many bytes of the failing record were read.
func (ce *CodecError) WithBytesRead(n int) *CodecError {
	ce.bytesRead = n
	return ce
}

// Offset returns the byte position where decoding failed.
func (ce *CodecError) Offset() int64 {
	return ce.offset
}

// BytesRead returns how many bytes of the failing record were read before
// the error was detected.
func (ce *CodecError) BytesRead() int {
	return ce.bytesRead
}

// NewTruncatedRecordError creates an error describing a record that ends
// before its declared length, the expected shape of a crash-torn WAL tail.
func NewTruncatedRecordError(offset int64, bytesRead int, cause error) *CodecError {
	return NewCodecError(cause, ErrorCodeTruncatedRecord, "record truncated before declared length").
		WithOffset(offset).
		WithBytesRead(bytesRead)
}

// NewRecordTooLargeError creates an error for a decoded length prefix that
// exceeds the configured soft cap, guarding against treating garbage bytes
// as an enormous allocation request.
func NewRecordTooLargeError(offset int64, declared, max uint32) *CodecError {
	return NewCodecError(nil, ErrorCodeRecordTooLarge, "declared record length exceeds soft cap").
		WithOffset(offset).
		WithDetail("declaredLength", declared).
		WithDetail("maxLength", max)
}
