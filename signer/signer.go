package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	algorithm     = "AWS4-HMAC-SHA256"
	service       = "s3"
	requestSuffix = "aws4_request"
	signedHeaders = "host"

	// Payload marker for presigned GET: the body is never hashed.
	unsignedPayload = "UNSIGNED-PAYLOAD"

	amzDateFormat = "20060102T150405Z"
	dateFormat    = "20060102"
)

// ErrConfiguration reports a signing request that cannot be constructed
// from the supplied configuration. It is returned before any other work
// happens; the signer itself performs no I/O.
var ErrConfiguration = errors.New("signer: invalid configuration")

// Credentials holds the signing identity. Read once at process start and
// immutable afterwards; never persisted by this package.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Signer produces presigned HTTPS GET URLs for private objects using the
// version-4 HMAC chain, without an object-storage client. Given identical
// credentials, resource and clock output, the URL is byte-identical across
// calls.
type Signer struct {
	*Options
}

func NewSigner(opts ...Option) *Signer {
	return &Signer{
		Options: NewOptions(opts...),
	}
}

// Host returns the virtual-hosted endpoint for a bucket. The us-east-1
// endpoint carries no regional suffix; every other region does.
func Host(bucket, region string) (string, error) {
	if bucket == "" {
		return "", fmt.Errorf("%w: missing bucket", ErrConfiguration)
	}
	if region == "" {
		return "", fmt.Errorf("%w: missing region", ErrConfiguration)
	}
	if region == "us-east-1" {
		return bucket + ".s3.amazonaws.com", nil
	}
	return fmt.Sprintf("%s.s3-%s.amazonaws.com", bucket, region), nil
}

// PresignGet builds the full presigned URL for GET <bucket>/<key>.
func (s *Signer) PresignGet(bucket, key string) (string, error) {
	if s.Credentials.AccessKeyID == "" || s.Credentials.SecretAccessKey == "" {
		return "", fmt.Errorf("%w: missing credentials", ErrConfiguration)
	}
	if key == "" {
		return "", fmt.Errorf("%w: missing object key", ErrConfiguration)
	}

	host, err := Host(bucket, s.Region)
	if err != nil {
		return "", err
	}

	now := s.Now().UTC()
	amzDate := now.Format(amzDateFormat)
	dateStamp := now.Format(dateFormat)
	scope := strings.Join([]string{dateStamp, s.Region, service, requestSuffix}, "/")

	params := [][2]string{
		{"X-Amz-Algorithm", algorithm},
		{"X-Amz-Credential", s.Credentials.AccessKeyID + "/" + scope},
		{"X-Amz-Date", amzDate},
		{"X-Amz-SignedHeaders", signedHeaders},
	}
	if s.Expires > 0 {
		params = append(params, [2]string{"X-Amz-Expires", strconv.FormatInt(s.Expires, 10)})
	}
	if s.Credentials.SessionToken != "" {
		params = append(params, [2]string{"X-Amz-Security-Token", s.Credentials.SessionToken})
	}
	sort.Slice(params, func(i, j int) bool { return params[i][0] < params[j][0] })

	encoded := make([]string, 0, len(params))
	for _, p := range params {
		encoded = append(encoded, uriEscape(p[0], true)+"="+uriEscape(p[1], true))
	}
	canonicalQuery := strings.Join(encoded, "&")

	// Path separators stay raw: the service matches against the
	// non-decoded delimiters.
	canonicalURI := "/" + uriEscape(key, false)

	canonicalRequest := strings.Join([]string{
		"GET",
		canonicalURI,
		canonicalQuery,
		"host:" + host,
		"",
		signedHeaders,
		unsignedPayload,
	}, "\n")

	digest := sha256.Sum256([]byte(canonicalRequest))
	stringToSign := strings.Join([]string{
		algorithm,
		amzDate,
		scope,
		hex.EncodeToString(digest[:]),
	}, "\n")

	signature := hex.EncodeToString(hmacSHA256(s.signingKey(dateStamp), []byte(stringToSign)))

	return "https://" + host + canonicalURI + "?" + canonicalQuery + "&X-Amz-Signature=" + signature, nil
}

// signingKey derives the request key by chaining date, region, service and
// the terminal suffix off the prefixed secret.
func (s *Signer) signingKey(dateStamp string) []byte {
	k := hmacSHA256([]byte("AWS4"+s.Credentials.SecretAccessKey), []byte(dateStamp))
	k = hmacSHA256(k, []byte(s.Region))
	k = hmacSHA256(k, []byte(service))
	return hmacSHA256(k, []byte(requestSuffix))
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// uriEscape percent-encodes per the version-4 rules: unreserved bytes pass
// through, everything else becomes %XX with uppercase hex. Slashes are kept
// raw in paths and encoded in query values.
func uriEscape(s string, encodeSlash bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		case c == '/' && !encodeSlash:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
