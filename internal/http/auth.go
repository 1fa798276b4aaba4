package http

import (
	"encoding/base64"
)

// Base64Alphabet is the standard alphabet proxies decode Basic
// credentials with. Padding is '=' and output is never wrapped.
const Base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var credentialEncoding = base64.NewEncoding(Base64Alphabet).WithPadding(base64.StdPadding)

// EncodeCredentials base64-encodes b, producing 4*ceil(len(b)/3) bytes.
func EncodeCredentials(b []byte) string {
	return credentialEncoding.EncodeToString(b)
}

// BasicAuth is the Proxy-Authorization value for username and password.
func BasicAuth(username, password string) string {
	return "Basic " + EncodeCredentials([]byte(username+":"+password))
}
