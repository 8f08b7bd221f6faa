package ws

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

var ErrUnauthenticated = errors.New("unauthenticated websocket connection")

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
