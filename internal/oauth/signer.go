// Package oauth signs destination store requests with two-legged OAuth 1.0a
// (consumer key and secret only, HMAC-SHA1), the scheme WooCommerce accepts over
// plain HTTP.
package oauth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SignatureMethod = "HMAC-SHA1"
	Version         = "1.0"
)

type Signer struct {
	consumerKey    string
	consumerSecret string

	now   func() time.Time
	nonce func() string
}

func NewSigner(consumerKey, consumerSecret string) *Signer {
	return &Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		now:            time.Now,
		nonce:          newNonce,
	}
}

// Sign returns a fresh Authorization header value for one request. Headers must
// not be reused: every call draws a new nonce and timestamp.
func (s *Signer) Sign(rawURL, method string) string {
	params := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": SignatureMethod,
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_version":          Version,
	}

	params["oauth_signature"] = Signature(s.consumerSecret, BaseString(method, rawURL, params))

	return header(params)
}

// BaseString builds the signature base string from the method, the normalized URL
// and the oauth params merged with the URL query.
func BaseString(method, rawURL string, oauthParams map[string]string) string {
	base, query := normalizeURL(rawURL)

	pairs := make([]string, 0, len(oauthParams)+len(query))
	for k, v := range oauthParams {
		if k == "oauth_signature" {
			continue
		}
		pairs = append(pairs, Encode(k)+"="+Encode(v))
	}
	for k, values := range query {
		for _, v := range values {
			pairs = append(pairs, Encode(k)+"="+Encode(v))
		}
	}
	sort.Strings(pairs)

	return strings.ToUpper(method) + "&" + Encode(base) + "&" + Encode(strings.Join(pairs, "&"))
}

// Signature computes base64(HMAC-SHA1(base, enc(secret)&)). The token secret is
// always empty.
func Signature(consumerSecret, baseString string) string {
	mac := hmac.New(sha1.New, []byte(Encode(consumerSecret)+"&"))
	mac.Write([]byte(baseString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ParseHeader splits an Authorization header value back into its parameters.
func ParseHeader(value string) map[string]string {
	params := make(map[string]string)
	value = strings.TrimPrefix(value, "OAuth ")
	for _, part := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		v = strings.Trim(v, `"`)
		if unescaped, err := url.PathUnescape(v); err == nil {
			v = unescaped
		}
		params[k] = v
	}
	return params
}

// Verify recomputes the signature carried by an Authorization header.
func Verify(consumerSecret, method, rawURL, headerValue string) bool {
	params := ParseHeader(headerValue)
	got, ok := params["oauth_signature"]
	if !ok {
		return false
	}
	want := Signature(consumerSecret, BaseString(method, rawURL, params))
	return hmac.Equal([]byte(got), []byte(want))
}

// Encode is RFC 3986 percent-encoding: only ALPHA, DIGIT and -._~ stay literal.
func Encode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte("0123456789ABCDEF"[c>>4])
		b.WriteByte("0123456789ABCDEF"[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

func normalizeURL(rawURL string) (string, url.Values) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, nil
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && !(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
		host += ":" + port
	}

	return scheme + "://" + host + u.EscapedPath(), u.Query()
}

func header(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, Encode(k)+`="`+Encode(params[k])+`"`)
	}
	return "OAuth " + strings.Join(parts, ", ")
}

func newNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
