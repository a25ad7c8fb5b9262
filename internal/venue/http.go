package venue

import (
	"io"
	"net/http"
)

// maxBodyBytes bounds REST response bodies; exchangeInfo-style listings are
// the largest payloads the gateways read.
const maxBodyBytes = 16 << 20

func readAll(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
