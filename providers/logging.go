package providers

import (
	"encoding/json"

	"github.com/TrinityDev369/thumbgen/logger"
)

// sensitiveHeaders are masked before request logging.
var sensitiveHeaders = map[string]bool{
	"Authorization": true,
	"x-key":         true,
}

func logRequest(provider, method, url string, headers RequestHeaders, body []byte) {
	logHeaders := make(map[string]string, len(headers))
	for k, v := range headers {
		if sensitiveHeaders[k] {
			logHeaders[k] = "***"
		} else {
			logHeaders[k] = v
		}
	}
	logger.APIRequest(provider, method, url, logHeaders, json.RawMessage(body))
}

func logResponse(provider string, statusCode int, body []byte) {
	logger.APIResponse(provider, statusCode, string(body), nil)
}
