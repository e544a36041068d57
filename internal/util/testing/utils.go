package test_utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type RequestOptions struct {
	Method         string
	URL            string
	Body           any
	Token          string
	RemoteAddr     string
	ExpectedStatus int
}

type Response struct {
	Code   int
	Body   []byte
	Header http.Header
}

// MakeRequest performs one request against an in-process router and
// asserts the response status. RemoteAddr defaults to a non-loopback
// address so tests exercise the remote-caller path unless they opt in.
func MakeRequest(t *testing.T, router *gin.Engine, options RequestOptions) Response {
	t.Helper()

	var bodyReader *bytes.Reader
	if options.Body != nil {
		encoded, err := json.Marshal(options.Body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(encoded)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(options.Method, options.URL, bodyReader)
	if options.Body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if options.Token != "" {
		request.Header.Set("Authorization", "Bearer "+options.Token)
	}

	request.RemoteAddr = "203.0.113.10:51234"
	if options.RemoteAddr != "" {
		request.RemoteAddr = options.RemoteAddr
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if options.ExpectedStatus != 0 {
		require.Equal(t, options.ExpectedStatus, recorder.Code,
			"unexpected status for %s %s: %s", options.Method, options.URL, recorder.Body.String())
	}

	return Response{
		Code:   recorder.Code,
		Body:   recorder.Body.Bytes(),
		Header: recorder.Header(),
	}
}

// MakeRequestAndUnmarshal performs the request and decodes the JSON body
// into target.
func MakeRequestAndUnmarshal(t *testing.T, router *gin.Engine, options RequestOptions, target any) Response {
	t.Helper()

	response := MakeRequest(t, router, options)
	require.NoError(t, json.Unmarshal(response.Body, target),
		"failed to unmarshal response body: %s", string(response.Body))

	return response
}
