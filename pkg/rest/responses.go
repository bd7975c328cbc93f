package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	xe "github.com/opst/mldbkit/pkg/errors"
)

// MessageFor is a title of error message for each status code range.
type MessageFor map[StatusCodeRange]string

// unmarshal http response which has json content.
//
// args:
//   - resp: http response to be processed.
//   - v: value which response should be.
//   - messageFor: title of error message for HTTP status code range.
//
// return:
//
//	RemoteOperationError if...
//	- can not read response body
//	- response body is not shaped of v
//	- status code is not 2xx
func unmarshalJsonResponse[T any](resp *http.Response, v *T, messageFor MessageFor) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return xe.NewRemoteOperationError(
			fmt.Sprintf("%s\ncannot read server message: %s", messageOf(resp, messageFor), err),
			resp.StatusCode, nil,
		)
	}

	if StatusCodeRangeOf(resp) != Status2xx {
		return xe.NewRemoteOperationError(messageOf(resp, messageFor), resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return xe.NewRemoteOperationError(
			fmt.Sprintf("unexpected response: %s", err), resp.StatusCode, body,
		)
	}
	return nil
}

// discard payload of a response, and check its status.
//
// Status codes in acceptable are handled as success, in addition to 2xx.
func unmarshalResponseDiscardingPayload(resp *http.Response, messageFor MessageFor, acceptable ...int) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		body = nil
	}
	if StatusCodeRangeOf(resp) == Status2xx {
		return nil
	}
	for _, a := range acceptable {
		if resp.StatusCode == a {
			return nil
		}
	}
	return xe.NewRemoteOperationError(messageOf(resp, messageFor), resp.StatusCode, body)
}

func messageOf(resp *http.Response, messageFor MessageFor) string {
	scr := StatusCodeRangeOf(resp)
	if message, ok := messageFor[scr]; ok {
		return message
	}
	return scr.String()
}
