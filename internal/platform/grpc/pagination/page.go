// Package pagination resolves page_size, page_token and order_by inputs of
// list RPCs over in-memory results.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidToken reports a page token this package did not issue.
var ErrInvalidToken = errors.New("invalid page token")

const tokenPrefix = "offset:"

// SizeConfig bounds page sizes.
type SizeConfig struct {
	Default int
	Max     int
}

// OrderConfig lists the accepted order_by values. The first entry of
// Allowed is used when Default is empty.
type OrderConfig struct {
	Default string
	Allowed []string
}

// Request is a page request as received from a caller.
type Request struct {
	Size  int32
	Token string
}

// Window is a resolved slice of an ordered result.
type Window struct {
	Start int
	End   int
	// Next is empty on the last page.
	Next string
}

// Size applies the default and the maximum to a requested page size.
func Size(requested int32, cfg SizeConfig) int {
	size := int(requested)
	if size <= 0 {
		size = cfg.Default
	}
	if cfg.Max > 0 && size > cfg.Max {
		size = cfg.Max
	}
	return max(size, 1)
}

// Order canonicalizes order_by ("Age  DESC" becomes "age desc") and checks it
// against cfg.
func Order(orderBy string, cfg OrderConfig) (string, error) {
	canonical := strings.ToLower(strings.Join(strings.Fields(orderBy), " "))
	if canonical == "" {
		if cfg.Default != "" || len(cfg.Allowed) == 0 {
			return cfg.Default, nil
		}
		return cfg.Allowed[0], nil
	}
	for _, allowed := range cfg.Allowed {
		if canonical == allowed {
			return canonical, nil
		}
	}
	return "", fmt.Errorf("order_by %q not one of %s", orderBy, strings.Join(cfg.Allowed, ", "))
}

// Token encodes an offset as an opaque page token.
func Token(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(tokenPrefix + strconv.Itoa(offset)))
}

// Offset decodes a page token. The empty token is the first page.
func Offset(token string) (int, error) {
	if token == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, ErrInvalidToken
	}
	value, ok := strings.CutPrefix(string(raw), tokenPrefix)
	if !ok {
		return 0, ErrInvalidToken
	}
	offset, err := strconv.Atoi(value)
	if err != nil || offset < 0 {
		return 0, ErrInvalidToken
	}
	return offset, nil
}

// Paginate resolves req over total ordered items.
func Paginate(total int, req Request, cfg SizeConfig) (Window, error) {
	offset, err := Offset(req.Token)
	if err != nil {
		return Window{}, err
	}
	start := min(offset, total)
	end := min(start+Size(req.Size, cfg), total)
	w := Window{Start: start, End: end}
	if end < total {
		w.Next = Token(end)
	}
	return w, nil
}
