package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Card is a birthday card addressed by its slug.
type Card struct {
	Slug      string    `db:"slug" json:"slug" yaml:"slug"`
	Name      string    `db:"name" json:"name" yaml:"name"`
	Age       int       `db:"age" json:"age" yaml:"age"`
	Message   string    `db:"message" json:"message" yaml:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at" yaml:"-"`
}

// CreateCardRequest is the body accepted by POST /card.
type CreateCardRequest struct {
	Slug    string `json:"slug,omitempty"`
	Name    string `json:"name" validate:"required,notblank"`
	Age     *Age   `json:"age" validate:"required,gte=0"`
	Message string `json:"message" validate:"required,notblank"`
}

// CreateCardResponse is returned by POST /card on success.
type CreateCardResponse struct {
	Success bool   `json:"success"`
	Result  *Card  `json:"result"`
	URL     string `json:"url"`
}

// GetCardResponse is returned by GET /card on success.
type GetCardResponse struct {
	Success bool  `json:"success"`
	Card    *Card `json:"card"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Age accepts either a JSON number or a numeric string, since HTML number
// inputs are submitted as text.
type Age int

var (
	errAgeNotInteger = errors.New("age must be an integer")
	// Ages are stored in 32-bit integer columns.
	errAgeOutOfRange = errors.New("age out of range")
)

func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return errAgeNotInteger
		}
	} else {
		raw = string(data)
	}

	n, err := ParseAge(raw)
	if err != nil {
		return err
	}
	*a = Age(n)
	return nil
}

// ParseAge converts text to an age. Integral floats such as "30.0" are
// accepted; anything else that is not a whole number is rejected.
func ParseAge(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, fmt.Errorf("%w: %q", errAgeNotInteger, s)
		}
		if f > math.MaxInt32 || f < math.MinInt32 {
			return 0, fmt.Errorf("%w: %q", errAgeOutOfRange, s)
		}
		n = int(f)
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fmt.Errorf("%w: %q", errAgeOutOfRange, s)
	}
	return n, nil
}

var whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)

// DeriveSlug builds the default slug for a card: the lowercased name with
// every whitespace run replaced by "-", followed by "-<age>".
func DeriveSlug(name string, age int) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-") + "-" + strconv.Itoa(age)
}

// ErrInvalidSlug is returned by ValidateSlug.
var ErrInvalidSlug = errors.New("invalid slug")

// ValidateSlug reports whether slug can be used as a single URL path segment.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSlug)
	}
	if i := strings.IndexFunc(slug, func(r rune) bool {
		return r == '/' || r == '?' || r == '#' || r == '%' || whitespaceRun.MatchString(string(r))
	}); i >= 0 {
		r, _ := utf8.DecodeRuneInString(slug[i:])
		return fmt.Errorf("%w: %q contains %q", ErrInvalidSlug, slug, r)
	}
	return nil
}

// ResolveSlug returns the slug a create request should be stored under.
func (r *CreateCardRequest) ResolveSlug() (string, error) {
	slug := strings.TrimSpace(r.Slug)
	if slug == "" {
		age := 0
		if r.Age != nil {
			age = int(*r.Age)
		}
		slug = DeriveSlug(r.Name, age)
	}
	if err := ValidateSlug(slug); err != nil {
		return "", err
	}
	return slug, nil
}

// Card builds the record to persist for this request.
func (r *CreateCardRequest) Card(slug string) *Card {
	c := &Card{Slug: slug, Name: r.Name, Message: r.Message}
	if r.Age != nil {
		c.Age = int(*r.Age)
	}
	return c
}
