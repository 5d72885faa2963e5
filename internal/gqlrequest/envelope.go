package gqlrequest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

var jsonNull = []byte("null")

// Envelope is the transport-independent request payload.
type Envelope struct {
	Method      string
	ContentType string

	Query         string
	OperationName string
	VariablesRaw  json.RawMessage

	DocumentSizeBytes int
}

// postBody is the JSON document a POST request carries.
type postBody struct {
	Query         string          `json:"query"`
	OperationName string          `json:"operationName"`
	Variables     json.RawMessage `json:"variables"`
}

// DecodeEnvelope reads the payload of r. GET requests carry it in the URL and
// POST requests in the body, either as JSON or as a bare application/graphql
// document. A POST body is rewound so later handlers can read it again.
func DecodeEnvelope(r *http.Request) (Envelope, error) {
	if r == nil {
		return Envelope{}, errors.New("request is nil")
	}
	env := Envelope{Method: r.Method, ContentType: r.Header.Get("Content-Type")}

	var err error
	switch r.Method {
	case http.MethodGet:
		env.readURL(r.URL.Query())
	case http.MethodPost:
		err = env.readBody(r)
	}
	env.DocumentSizeBytes = len(env.Query)
	return env, err
}

func (e *Envelope) readURL(values url.Values) {
	e.Query = values.Get("query")
	e.OperationName = values.Get("operationName")
	e.setVariables([]byte(values.Get("variables")))
}

func (e *Envelope) readBody(r *http.Request) error {
	if r.Body == nil {
		return nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if isGraphQLDocument(e.ContentType) {
		e.Query = string(body)
		return nil
	}
	if body = bytes.TrimSpace(body); len(body) == 0 {
		return nil
	}
	var payload postBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return err
	}
	e.Query = payload.Query
	e.OperationName = payload.OperationName
	e.setVariables(payload.Variables)
	return nil
}

func (e *Envelope) setVariables(raw []byte) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return
	}
	e.VariablesRaw = append(json.RawMessage(nil), raw...)
}

func isGraphQLDocument(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}
	return strings.EqualFold(mediaType, "application/graphql")
}

// DecodeVariables decodes the variables object. Numbers stay json.Number so
// integer arguments keep their precision.
func (e Envelope) DecodeVariables() (map[string]any, error) {
	raw := bytes.TrimSpace(e.VariablesRaw)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var vars map[string]any
	if err := decoder.Decode(&vars); err != nil {
		return nil, fmt.Errorf("variables must be a JSON object: %w", err)
	}
	return vars, nil
}
