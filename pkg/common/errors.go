package common

import (
	"errors"
	"fmt"
)

// ErrUnknownTag is reported when a tag is not in the registry for its IFD category
var ErrUnknownTag = errors.New("unknown tag")

// MalformedValueError reports edited text that could not be converted to the
// type declared for its tag
type MalformedValueError struct {
	Category string
	TagID    uint16
	Text     string
	Err      error
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("Malformed Value: %s tag 0x%04x: cannot convert %q: %v", e.Category, e.TagID, e.Text, e.Err)
}

func (e *MalformedValueError) Unwrap() error {
	return e.Err
}

// LocationError reports that the current coordinates could not be obtained
type LocationError struct {
	Message string
	Err     error
}

func (e *LocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Location Error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("Location Error: %s", e.Message)
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

// SerializationError reports that the edited metadata could not be encoded
// into the image
type SerializationError struct {
	Category string
	TagID    uint16
	Message  string
	Err      error
}

func (e *SerializationError) Error() string {
	msg := "Serialization Error: "
	if e.Category != "" {
		msg += fmt.Sprintf("%s tag 0x%04x: ", e.Category, e.TagID)
	}
	msg += e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("Configuration Error: %s", e.Message)
}

func NewMalformedValueError(category string, tagID uint16, text string, err error) error {
	return &MalformedValueError{Category: category, TagID: tagID, Text: text, Err: err}
}

func NewLocationError(message string, err error) error {
	return &LocationError{Message: message, Err: err}
}

func NewSerializationError(category string, tagID uint16, message string, err error) error {
	return &SerializationError{Category: category, TagID: tagID, Message: message, Err: err}
}

func NewConfigError(message string) error {
	return &ConfigError{Message: message}
}
