package utils

import (
	"errors"
	"io"
	"os"
	"unicode/utf8"
)

// sniffLength defines the maximum number of bytes read when detecting binary content.
const sniffLength = 8000

// IsBinary reports whether the provided byte slice appears to contain binary data.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return !utf8.Valid(data)
}

// IsFileBinary reads up to sniffLength bytes from the file at path and determines
// if the content appears to be binary. A multi-byte rune cut by the sniff window
// does not count as invalid UTF-8.
func IsFileBinary(path string) (bool, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return false, openError
	}
	defer fileHandle.Close()

	buffer := make([]byte, sniffLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && !errors.Is(readError, io.EOF) && !errors.Is(readError, io.ErrUnexpectedEOF) {
		return false, readError
	}
	sample := buffer[:bytesRead]
	if bytesRead == sniffLength {
		sample = trimIncompleteRune(sample)
	}
	return IsBinary(sample), nil
}

// trimIncompleteRune drops a trailing partial UTF-8 sequence.
func trimIncompleteRune(data []byte) []byte {
	for tail := 1; tail < utf8.UTFMax && tail <= len(data); tail++ {
		start := len(data) - tail
		if !utf8.RuneStart(data[start]) {
			continue
		}
		if !utf8.FullRune(data[start:]) {
			return data[:start]
		}
		return data
	}
	return data
}
