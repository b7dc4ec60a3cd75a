package arango

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/goarango/internal/protocol"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		exp         expect
		wantSuccess bool
		wantValue   bool
		wantErrNum  int
		wantPrefix  string
	}{
		{"success", 200, `{"a":1}`, expectOK, true, true, 0, ""},
		{"success with null body", 200, ``, expectOK, false, false, 0, "Protocol error: "},
		{"2xx outside the success set", 200, `{"a":1}`, expectCreated, false, false, 0, "Protocol error: "},
		{"412 keeps value", 412, `{"error":true,"code":412,"errorNum":1200,"errorMessage":"conflict","_rev":"r1"}`, expectOKOr412, false, true, 1200, "ArangoDB error: "},
		{"412 without value rule", 412, `{"error":true,"code":412,"errorNum":1200,"errorMessage":"conflict"}`, expectOK, false, false, 1200, "ArangoDB error: "},
		{"404 arango error", 404, `{"error":true,"code":404,"errorNum":1202,"errorMessage":"document not found"}`, expectOKOr412, false, false, 1202, "ArangoDB error: "},
		{"400 plain text", 400, `bad`, expectOK, false, false, 0, "Protocol error: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := interpret[Document](protocol.NewResponse(tt.status, http.Header{}, []byte(tt.body)), tt.exp)
			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, tt.wantValue, res.Value != nil)
			if tt.wantSuccess {
				assert.Nil(t, res.Error)
				assert.NoError(t, res.Err())
				return
			}
			require.NotNil(t, res.Error)
			assert.Equal(t, tt.wantErrNum, res.Error.Number)
			assert.Contains(t, res.Error.Message, tt.wantPrefix)
			assert.Error(t, res.Err())
		})
	}
}

func TestInterpret_Field(t *testing.T) {
	res := interpret[bool](protocol.NewResponse(201, nil, []byte(`{"error":false,"code":201,"result":true}`)),
		expect{codes: []int{201}, field: "result"})
	assert.True(t, res.Success)
	assert.True(t, res.Value)

	missing := interpret[bool](protocol.NewResponse(201, nil, []byte(`{"error":false}`)),
		expect{codes: []int{201}, field: "result"})
	assert.False(t, missing.Success)
	assert.True(t, errors.Is(missing.Error, ErrUnexpectedBody))
}

func TestResultDecode(t *testing.T) {
	res := interpret[Document](protocol.NewResponse(200, nil, []byte(`{"vertex":{"name":"alice","age":30}}`)), expectOK)
	var v struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	require.NoError(t, res.DecodeField("vertex", &v))
	assert.Equal(t, "alice", v.Name)
	assert.Equal(t, 30, v.Age)
	assert.Error(t, res.DecodeField("edge", &v))

	empty := &Result[Document]{}
	assert.ErrorIs(t, empty.Decode(&v), ErrUnexpectedBody)
}

func TestFailedResult(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	res := failed[Document](cause)
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.StatusCode)
	assert.Equal(t, "Protocol error: dial tcp: connection refused", res.Error.Message)
	assert.ErrorIs(t, res.Err(), cause)
}

func TestKeyIn(t *testing.T) {
	key, err := keyIn("people", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", key)

	key, err = keyIn("people", "people/alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", key)

	_, err = keyIn("people", "places/alice")
	assert.ErrorIs(t, err, ErrInvalidDocumentID)
	_, err = keyIn("people", "")
	assert.ErrorIs(t, err, ErrInvalidDocumentID)
}

func TestToDocument(t *testing.T) {
	src := Document{"a": 1}
	doc, err := ToDocument(src)
	require.NoError(t, err)
	doc["b"] = 2
	assert.NotContains(t, src, "b", "input is not mutated")

	doc, err = ToDocument(struct {
		Name string `json:"name"`
	}{"x"})
	require.NoError(t, err)
	assert.Equal(t, "x", doc["name"])

	doc, err = ToDocument(`{"n":1}`)
	require.NoError(t, err)
	assert.EqualValues(t, 1, doc["n"])

	_, err = ToDocument("[1,2]")
	assert.Error(t, err)
}
