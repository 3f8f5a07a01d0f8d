// Package linkx encodes and decodes the teacher join link: a URL whose query
// carries the owner's identity, display name and access code in reversibly
// base64url-encoded parameters plus a fixed action marker. The encoding is
// obfuscation only, not encryption.
package linkx

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

const (
	// ActionJoin is the fixed marker that makes a link a join link.
	ActionJoin = "join"

	paramAction = "action"
	paramOwner  = "om"
	paramName   = "in"
	paramCode   = "tc"
)

var (
	ErrNotJoinLink = errors.New("linkx: not a join link")
	ErrMalformed   = errors.New("linkx: malformed join link")
)

// JoinInvite is the payload a join link carries.
type JoinInvite struct {
	OwnerPhone string
	OwnerName  string
	AccessCode string
}

// Encode builds the join link for the given base URL.
func Encode(baseURL string, inv JoinInvite) string {
	params := url.Values{}
	params.Set(paramAction, ActionJoin)
	params.Set(paramOwner, encode(inv.OwnerPhone))
	params.Set(paramName, encode(inv.OwnerName))
	params.Set(paramCode, encode(inv.AccessCode))
	return strings.TrimSuffix(baseURL, "/") + "?" + params.Encode()
}

// Decode extracts the invite from a query string. Returns ErrNotJoinLink when
// the action marker is absent, so callers can cheaply ignore ordinary URLs.
func Decode(query url.Values) (JoinInvite, error) {
	if query.Get(paramAction) != ActionJoin {
		return JoinInvite{}, ErrNotJoinLink
	}

	owner, err := decode(query.Get(paramOwner))
	if err != nil {
		return JoinInvite{}, err
	}
	name, err := decode(query.Get(paramName))
	if err != nil {
		return JoinInvite{}, err
	}
	code, err := decode(query.Get(paramCode))
	if err != nil {
		return JoinInvite{}, err
	}

	if owner == "" || code == "" {
		return JoinInvite{}, ErrMalformed
	}

	return JoinInvite{OwnerPhone: owner, OwnerName: name, AccessCode: code}, nil
}

// DecodeURL parses a full link and extracts the invite.
func DecodeURL(raw string) (JoinInvite, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return JoinInvite{}, ErrMalformed
	}
	return Decode(u.Query())
}

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func decode(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return "", ErrMalformed
	}
	return string(b), nil
}
