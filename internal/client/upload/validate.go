package upload

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vimesta/internal/client/transport"
	"github.com/dmitrijs2005/vimesta/internal/sizex"
)

// DefaultMaxSize is the largest file accepted unless configured otherwise.
const DefaultMaxSize int64 = 2 << 30

type Constraints struct {
	MaxSize int64
	// AllowedExtensions lists lowercase extensions without the dot. Empty
	// allows everything.
	AllowedExtensions []string
}

type Reason int

const (
	ReasonNone Reason = iota
	ReasonSizeExceeded
	ReasonExtensionNotAllowed
)

func (r Reason) String() string {
	switch r {
	case ReasonSizeExceeded:
		return "size_exceeded"
	case ReasonExtensionNotAllowed:
		return "extension_not_allowed"
	}
	return "none"
}

type Validation struct {
	Valid   bool
	Reason  Reason
	Message string
}

// Extension returns the lowercased text after the last dot of name, or the
// whole lowercased name when it has no dot.
func Extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// Validate checks f against c. Size is checked before the extension.
func Validate(f transport.File, c Constraints) Validation {
	if f.Size() > c.MaxSize {
		return Validation{
			Reason:  ReasonSizeExceeded,
			Message: "File size exceeds maximum limit of " + sizex.Format(c.MaxSize),
		}
	}

	if len(c.AllowedExtensions) > 0 {
		ext := Extension(f.Name())
		allowed := false
		for _, a := range c.AllowedExtensions {
			if strings.ToLower(strings.TrimPrefix(a, ".")) == ext {
				allowed = true
				break
			}
		}
		if !allowed {
			return Validation{
				Reason:  ReasonExtensionNotAllowed,
				Message: fmt.Sprintf("File type .%s is not allowed", ext),
			}
		}
	}

	return Validation{Valid: true}
}
